package state

import (
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/rules"
	"github.com/kaedewm/yashiki/internal/tag"
)

// AddWindow registers a brand-new window. If it is not visible on its
// display (its tags don't intersect the display's visible tags), it
// is hidden immediately using the global hide position, since it has
// never been shown on any specific display before.
func (s *State) AddWindow(w *model.Window) []platform.WindowMove {
	s.Windows[w.ID] = w
	if d, ok := s.Displays[w.DisplayID]; ok && w.IsTiled() {
		d.AddToWindowOrder(w.ID)
	}

	visible := true
	if d, ok := s.Displays[w.DisplayID]; ok {
		visible = w.Tags.Intersects(d.VisibleTags)
	}
	if visible {
		return nil
	}

	x, y := s.GlobalHideFrameOrigin(w.Frame.Width, w.Frame.Height)
	saved := w.Frame
	w.SavedFrame = &saved
	move := platform.WindowMove{WindowID: uint32(w.ID), PID: w.PID, OldX: w.Frame.X, OldY: w.Frame.Y, NewX: x, NewY: y}
	w.Frame.X, w.Frame.Y = x, y
	return []platform.WindowMove{move}
}

// RemoveWindow deletes a window, clearing focus and tiling order
// references to it.
func (s *State) RemoveWindow(id model.WindowID) {
	w, ok := s.Windows[id]
	if !ok {
		return
	}
	if d, ok := s.Displays[w.DisplayID]; ok {
		d.RemoveFromWindowOrder(id)
	}
	if s.Focused != nil && *s.Focused == id {
		s.Focused = nil
	}
	delete(s.Windows, id)
}

// ApplyRulesToAllWindows re-classifies every window against the
// current rules engine: windows newly matched by an Ignore rule are
// removed first, then the remaining windows are reclassified for
// tags/display/floating changes. Returns the set of displays affected
// (by a window's old and/or new display id) and the window moves
// produced by any resulting visibility changes.
func (s *State) ApplyRulesToAllWindows(resolveOutput rules.ResolveOutputFunc) (map[model.DisplayID]bool, []platform.WindowMove) {
	affected := make(map[model.DisplayID]bool)

	var toRemove []model.WindowID
	for id, w := range s.Windows {
		if s.Rules.ShouldIgnore(w.AppName, w.AppID, w.Title, w.Ext) {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		if w, ok := s.Windows[id]; ok {
			affected[w.DisplayID] = true
		}
		s.RemoveWindow(id)
	}

	var moves []platform.WindowMove
	for _, w := range s.Windows {
		result := s.Rules.Classify(w.AppName, w.AppID, w.Title, w.Ext, resolveOutput)
		oldDisplay := w.DisplayID
		changed := false

		if result.Tags != nil {
			newTags := tag.FromMask(*result.Tags)
			if newTags != w.Tags {
				w.Tags = newTags
				changed = true
			}
		}
		if result.DisplayID != nil && *result.DisplayID != w.DisplayID {
			s.moveWindowDisplay(w, *result.DisplayID)
			changed = true
		}
		if result.IsFloating != nil && *result.IsFloating != w.IsFloating {
			w.IsFloating = *result.IsFloating
			changed = true
		}

		if changed {
			affected[oldDisplay] = true
			affected[w.DisplayID] = true
			if move, did := s.recomputeVisibility(w); did {
				moves = append(moves, move)
			}
		}
	}

	return affected, moves
}

// ComputeLayoutChangesForDisplay recomputes display id's effective
// layout from its first visible tag's override (falling back to
// DefaultLayout), updating CurrentLayout/PreviousLayout and reporting
// whether it changed.
func (s *State) ComputeLayoutChangesForDisplay(id model.DisplayID) bool {
	d, ok := s.Displays[id]
	if !ok {
		return false
	}
	newLayout := s.DefaultLayout
	if n, ok := d.VisibleTags.FirstTag(); ok {
		if l, ok := s.TagLayouts[n]; ok {
			newLayout = l
		}
	}
	if d.CurrentLayout == newLayout {
		return false
	}
	d.PreviousLayout = d.CurrentLayout
	d.CurrentLayout = newLayout
	return true
}
