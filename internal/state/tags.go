package state

import (
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/tag"
)

// corner names one of a display frame's four corners. The constants
// are declared in the fixed selection order hideCornerForDisplay
// uses: bottom-right first, falling back toward top-left only when a
// higher-priority corner collides with another display's frame.
type corner int

const (
	cornerBottomRight corner = iota
	cornerBottomLeft
	cornerTopRight
	cornerTopLeft
)

func cornerPoint(f geom.Rect, c corner) (int, int) {
	switch c {
	case cornerBottomRight:
		return f.Right(), f.Bottom()
	case cornerBottomLeft:
		return f.X, f.Bottom()
	case cornerTopRight:
		return f.Right(), f.Y
	default:
		return f.X, f.Y
	}
}

// containsInclusive is geom.Rect.Contains but with the far edges
// included, used only for hide-corner collision testing: a corner
// point sitting exactly on another display's boundary must still be
// treated as claimed by that display, since the OS resolves a point
// precisely on the seam between two monitors to one side or the
// other, never reliably to the hiding display.
func containsInclusive(f geom.Rect, x, y int) bool {
	return x >= f.X && x <= f.Right() && y >= f.Y && y <= f.Bottom()
}

// hideCornerForDisplay picks the first corner of display id's own
// frame, in bottom-right / bottom-left / top-right / top-left
// priority order, that does not fall on or inside any *other*
// display's frame.
func (s *State) hideCornerForDisplay(id model.DisplayID) corner {
	d, ok := s.Display(id)
	if !ok {
		return cornerBottomRight
	}
	for _, c := range []corner{cornerBottomRight, cornerBottomLeft, cornerTopRight, cornerTopLeft} {
		x, y := cornerPoint(d.Frame, c)
		collides := false
		for otherID, other := range s.Displays {
			if otherID == id {
				continue
			}
			if containsInclusive(other.Frame, x, y) {
				collides = true
				break
			}
		}
		if !collides {
			return c
		}
	}
	// Every corner collided (pathological overlapping-display setup):
	// fall back to the display's own bottom-right corner anyway.
	return cornerBottomRight
}

// ExpectedHidePosition returns the top-left a window of the given
// size should currently sit at while hidden on display id — the same
// calculation hideWindow applies, exposed so internal/sync can detect
// a hidden window the platform has silently relocated (spec §4.4's
// rehide-move step) without duplicating the corner math.
func (s *State) ExpectedHidePosition(id model.DisplayID, width, height int) (int, int) {
	d, ok := s.Display(id)
	if !ok {
		return 0, 0
	}
	return hideFrameOrigin(d.Frame, s.hideCornerForDisplay(id), width, height)
}

// HidePositionForDisplay returns display id's chosen hide corner as a
// bare display-frame point (used by this package's tests and any
// caller that only cares about which corner was picked, not the
// window-sized parking frame hideWindow actually applies).
func (s *State) HidePositionForDisplay(id model.DisplayID) (int, int) {
	d, ok := s.Display(id)
	if !ok {
		return 0, 0
	}
	return cornerPoint(d.Frame, s.hideCornerForDisplay(id))
}

// hideFrameOrigin returns the top-left a window of the given size must
// be parked at so that exactly one pixel of it remains within corner
// c of frame f, with the rest extending past that edge into the
// off-screen region beyond it (spec §4.1: "a hidden window's 1-pixel
// anchor never crosses into a neighbouring display").
func hideFrameOrigin(f geom.Rect, c corner, width, height int) (int, int) {
	var x, y int
	switch c {
	case cornerBottomRight:
		x = f.Right() - 1
		y = f.Bottom() - 1
	case cornerBottomLeft:
		x = f.X - (width - 1)
		y = f.Bottom() - 1
	case cornerTopRight:
		x = f.Right() - 1
		y = f.Y - (height - 1)
	default: // cornerTopLeft
		x = f.X - (width - 1)
		y = f.Y - (height - 1)
	}
	return x, y
}

// GlobalHidePosition returns the bottom-right-most point across every
// known display's frame, used only the very first time a brand-new
// window is hidden before it has ever been shown on a specific
// display (spec's supplemented hide-position feature).
func (s *State) GlobalHidePosition() (int, int) {
	maxX, maxY := 0, 0
	first := true
	for _, d := range s.Displays {
		x, y := d.Frame.Right(), d.Frame.Bottom()
		if first || x > maxX {
			maxX = x
		}
		if first || y > maxY {
			maxY = y
		}
		first = false
	}
	return maxX, maxY
}

// GlobalHideFrameOrigin returns the top-left a window of the given
// size should park at when it has no specific display to hide on yet
// (brand-new windows; see AddWindow), applying the same 1-pixel-anchor
// rule as hideFrameOrigin against GlobalHidePosition's corner.
func (s *State) GlobalHideFrameOrigin(width, height int) (int, int) {
	x, y := s.GlobalHidePosition()
	return hideFrameOrigin(geom.Rect{Width: x, Height: y}, cornerBottomRight, width, height)
}

// hideWindow parks w off-screen at its display's hide corner, saving
// its current frame for later restoration.
func (s *State) hideWindow(w *model.Window) platform.WindowMove {
	saved := w.Frame
	w.SavedFrame = &saved
	var x, y int
	if d, ok := s.Display(w.DisplayID); ok {
		x, y = hideFrameOrigin(d.Frame, s.hideCornerForDisplay(w.DisplayID), w.Frame.Width, w.Frame.Height)
	} else {
		x, y = s.GlobalHideFrameOrigin(w.Frame.Width, w.Frame.Height)
	}
	move := platform.WindowMove{WindowID: uint32(w.ID), PID: w.PID, OldX: w.Frame.X, OldY: w.Frame.Y, NewX: x, NewY: y}
	w.Frame.X, w.Frame.Y = x, y
	return move
}

// showWindow restores w to its saved frame, if it was hidden.
func (s *State) showWindow(w *model.Window) (platform.WindowMove, bool) {
	if w.SavedFrame == nil {
		return platform.WindowMove{}, false
	}
	move := platform.WindowMove{WindowID: uint32(w.ID), PID: w.PID, OldX: w.Frame.X, OldY: w.Frame.Y, NewX: w.SavedFrame.X, NewY: w.SavedFrame.Y}
	w.Frame = *w.SavedFrame
	w.SavedFrame = nil
	return move, true
}

// ViewTagsOnDisplay sets display id's visible tags, hiding windows
// that leave visibility and restoring windows that enter it, and
// returns the resulting window moves for the caller to apply.
func (s *State) ViewTagsOnDisplay(id model.DisplayID, tags tag.Tag) []platform.WindowMove {
	d, ok := s.Display(id)
	if !ok {
		return nil
	}
	oldTags := d.VisibleTags
	if oldTags == tags {
		return nil
	}
	d.PreviousVisibleTags = oldTags
	d.VisibleTags = tags

	var moves []platform.WindowMove
	for _, w := range s.Windows {
		if w.DisplayID != id {
			continue
		}
		wasVisible := w.Tags.Intersects(oldTags)
		nowVisible := w.Tags.Intersects(tags)
		switch {
		case wasVisible && !nowVisible:
			moves = append(moves, s.hideWindow(w))
		case !wasVisible && nowVisible:
			if move, did := s.showWindow(w); did {
				moves = append(moves, move)
			}
		}
	}
	return moves
}

// ToggleTagsOnDisplay XORs tags into display id's visible set. A
// toggle that would leave no tag visible is rejected (a display must
// always show at least one tag).
func (s *State) ToggleTagsOnDisplay(id model.DisplayID, tags tag.Tag) []platform.WindowMove {
	d, ok := s.Display(id)
	if !ok {
		return nil
	}
	next := d.VisibleTags.Toggle(tags)
	if next.IsEmpty() {
		return nil
	}
	return s.ViewTagsOnDisplay(id, next)
}

// ViewTagsLastOnDisplay swaps display id's visible tags back to
// whatever was visible before the most recent change.
func (s *State) ViewTagsLastOnDisplay(id model.DisplayID) []platform.WindowMove {
	d, ok := s.Display(id)
	if !ok {
		return nil
	}
	return s.ViewTagsOnDisplay(id, d.PreviousVisibleTags)
}

// SetWindowTags reassigns w's tags and hides/shows it on its current
// display according to the new tag's visibility there.
func (s *State) SetWindowTags(id model.WindowID, tags tag.Tag) (platform.WindowMove, bool) {
	w, ok := s.Window(id)
	if !ok {
		return platform.WindowMove{}, false
	}
	w.Tags = tags
	return s.recomputeVisibility(w)
}

// ToggleWindowTags XORs tags into w's own tag set.
func (s *State) ToggleWindowTags(id model.WindowID, tags tag.Tag) (platform.WindowMove, bool) {
	w, ok := s.Window(id)
	if !ok {
		return platform.WindowMove{}, false
	}
	next := w.Tags.Toggle(tags)
	if next.IsEmpty() {
		return platform.WindowMove{}, false
	}
	w.Tags = next
	return s.recomputeVisibility(w)
}

func (s *State) recomputeVisibility(w *model.Window) (platform.WindowMove, bool) {
	d, ok := s.Display(w.DisplayID)
	if !ok {
		return platform.WindowMove{}, false
	}
	visible := w.Tags.Intersects(d.VisibleTags)
	if visible && w.IsHidden() {
		return s.showWindow(w)
	}
	if !visible && !w.IsHidden() {
		return s.hideWindow(w), true
	}
	return platform.WindowMove{}, false
}

// SwitchTagForWindow makes w's first tag visible on its display if w
// is currently hidden there, so a freshly-focused window is always
// visible. Returns the resulting moves.
func (s *State) SwitchTagForWindow(id model.WindowID) []platform.WindowMove {
	w, ok := s.Window(id)
	if !ok || !w.IsHidden() {
		return nil
	}
	n, ok := w.Tags.FirstTag()
	if !ok {
		return nil
	}
	return s.ViewTagsOnDisplay(w.DisplayID, tag.New(n))
}
