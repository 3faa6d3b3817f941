package state

import (
	"sort"

	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
)

// fallbackDisplay returns the main display, or else the
// lowest-id display, among every display other than exclude.
func (s *State) fallbackDisplay(exclude model.DisplayID) (model.DisplayID, bool) {
	var ids []model.DisplayID
	for id := range s.Displays {
		if id != exclude {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, false
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if s.Displays[id].IsMain {
			return id, true
		}
	}
	return ids[0], true
}

// HandleDisplayChange reconciles State's displays against the
// platform's current list: new displays are added, displays that
// vanished are removed with their windows orphaned onto a fallback
// display, and windows previously orphaned *from* a display that just
// reappeared (e.g. the same physical monitor reconnecting with the
// same id) are restored to it. Returns the resulting window moves.
func (s *State) HandleDisplayChange(infos []platform.DisplayInfo) []platform.WindowMove {
	current := make(map[model.DisplayID]bool, len(infos))
	for _, info := range infos {
		id := model.DisplayID(info.ID)
		current[id] = true
		frame := geom.FromBounds(info.Frame)
		if d, ok := s.Displays[id]; ok {
			d.Frame = frame
			d.Name = info.Name
			d.IsMain = info.IsMain
		} else {
			s.Displays[id] = model.NewDisplay(id, info.Name, frame, info.IsMain)
			if len(s.Displays) == 1 {
				s.FocusedDisplay = id
			}
		}
	}

	var moves []platform.WindowMove

	// Restore windows stolen by a display that has now reappeared.
	for _, w := range s.Windows {
		if w.OrphanedFrom == nil || !current[*w.OrphanedFrom] {
			continue
		}
		target := *w.OrphanedFrom
		w.OrphanedFrom = nil
		s.moveWindowDisplay(w, target)
		if move, did := s.recomputeVisibility(w); did {
			moves = append(moves, move)
		}
	}

	var removed []model.DisplayID
	for id := range s.Displays {
		if !current[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	for _, id := range removed {
		fallback, ok := s.fallbackDisplay(id)
		for _, w := range s.Windows {
			if w.DisplayID != id {
				continue
			}
			orphan := id
			if ok {
				s.moveWindowDisplay(w, fallback)
			}
			w.OrphanedFrom = &orphan
			if move, did := s.recomputeVisibility(w); did {
				moves = append(moves, move)
			}
		}
		delete(s.Displays, id)
		if s.FocusedDisplay == id && ok {
			s.FocusedDisplay = fallback
		}
	}

	return moves
}

// MoveWindowDisplay reassigns w to display id, maintaining both
// displays' WindowOrder invariants for tiled windows. Exported for
// internal/sync, which reassigns a window's display as the platform
// reports its bounds drifting into another monitor's frame.
func (s *State) MoveWindowDisplay(w *model.Window, id model.DisplayID) {
	s.moveWindowDisplay(w, id)
}

// moveWindowDisplay reassigns w to display id, maintaining both
// displays' WindowOrder invariants for tiled windows.
func (s *State) moveWindowDisplay(w *model.Window, id model.DisplayID) {
	if old, ok := s.Displays[w.DisplayID]; ok && w.IsTiled() {
		old.RemoveFromWindowOrder(w.ID)
	}
	w.DisplayID = id
	if d, ok := s.Displays[id]; ok && w.IsTiled() {
		d.AddToWindowOrder(w.ID)
	}
}
