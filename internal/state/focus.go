package state

import (
	"sort"

	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
)

// Direction is a window-focus/swap direction: spatial (Left/Right/Up/
// Down) or stack-order (Next/Prev).
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirNext
	DirPrev
)

// OutputDirection cycles the focused display.
type OutputDirection int

const (
	OutputNext OutputDirection = iota
	OutputPrev
)

// FocusWindow sets the focused window directly, reporting whether id
// exists.
func (s *State) FocusWindow(id model.WindowID) bool {
	w, ok := s.Window(id)
	if !ok {
		return false
	}
	s.Focused = &w.ID
	s.FocusedDisplay = w.DisplayID
	return true
}

// stackOrder returns the candidate swap order for a display: tiled
// windows in tiling order, then floating windows sorted by id for
// determinism. Used only by findSwapTarget's Next/Prev path, which
// swaps positions within window_order.
func (s *State) stackOrder(displayID model.DisplayID) []model.WindowID {
	out := append([]model.WindowID(nil), s.TiledWindowsInOrder(displayID)...)
	var floating []model.WindowID
	for _, w := range s.VisibleWindowsOnDisplay(displayID) {
		if !w.IsTiled() {
			floating = append(floating, w.ID)
		}
	}
	sort.Slice(floating, func(i, j int) bool { return floating[i] < floating[j] })
	return append(out, floating...)
}

// focusOrder returns every visible window on a display (tiled and
// floating alike), sorted by WindowId, for WindowFocus{Next,Prev}.
// Unlike stackOrder, this ignores window_order entirely, so swapping
// two windows never perturbs focus-cycle order.
func (s *State) focusOrder(displayID model.DisplayID) []model.WindowID {
	visible := s.VisibleWindowsOnDisplay(displayID)
	ids := make([]model.WindowID, len(visible))
	for i, w := range visible {
		ids[i] = w.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func indexOf(ids []model.WindowID, id model.WindowID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// CandidateStackWindow returns the id that FocusWindowStack would
// move focus to, without mutating State — used by the command
// processor, whose WindowFocus contract is read-only (the actual
// focus mutation happens only once the executor applies the
// resulting FocusWindow effect, see internal/command).
func (s *State) CandidateStackWindow(dir Direction) (model.WindowID, bool) {
	order := s.focusOrder(s.FocusedDisplay)
	if len(order) == 0 {
		return 0, false
	}
	cur, ok := s.FocusedWindow()
	idx := -1
	if ok {
		idx = indexOf(order, cur.ID)
	}
	var next int
	switch {
	case idx < 0:
		next = 0
	case dir == DirNext:
		next = (idx + 1) % len(order)
	default:
		next = (idx - 1 + len(order)) % len(order)
	}
	return order[next], true
}

// FocusWindowStack moves focus to the next/previous window in stack
// order on the focused display, wrapping around.
func (s *State) FocusWindowStack(dir Direction) bool {
	id, ok := s.CandidateStackWindow(dir)
	if !ok {
		return false
	}
	return s.FocusWindow(id)
}

// CandidateDirectionalWindow returns the id that FocusWindowDirectional
// would move focus to, without mutating State (see CandidateStackWindow).
func (s *State) CandidateDirectionalWindow(dir Direction) (model.WindowID, bool) {
	cur, ok := s.FocusedWindow()
	if !ok {
		return 0, false
	}
	cx, cy := cur.Center()
	var best *model.Window
	bestDist := 0
	for _, w := range s.VisibleWindowsOnDisplay(s.FocusedDisplay) {
		if w.ID == cur.ID {
			continue
		}
		wx, wy := w.Center()
		dx, dy := wx-cx, wy-cy
		var inDirection bool
		switch dir {
		case DirLeft:
			inDirection = dx < 0
		case DirRight:
			inDirection = dx > 0
		case DirUp:
			inDirection = dy < 0
		case DirDown:
			inDirection = dy > 0
		}
		if !inDirection {
			continue
		}
		dist := abs(dx) + abs(dy)
		if best == nil || dist < bestDist {
			best, bestDist = w, dist
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FocusWindowDirectional moves focus to the visible window on the
// focused display whose center is nearest in the given spatial
// direction from the currently focused window's center.
func (s *State) FocusWindowDirectional(dir Direction) bool {
	id, ok := s.CandidateDirectionalWindow(dir)
	if !ok {
		return false
	}
	return s.FocusWindow(id)
}

// CandidateInDirection returns the id FocusInDirection would move
// focus to, without mutating State.
func (s *State) CandidateInDirection(dir Direction) (model.WindowID, bool) {
	if dir == DirNext || dir == DirPrev {
		return s.CandidateStackWindow(dir)
	}
	return s.CandidateDirectionalWindow(dir)
}

// FocusInDirection dispatches to stack or spatial focus movement
// according to the direction's kind.
func (s *State) FocusInDirection(dir Direction) bool {
	if dir == DirNext || dir == DirPrev {
		return s.FocusWindowStack(dir)
	}
	return s.FocusWindowDirectional(dir)
}

// PreferredVisibleWindow returns the best candidate to focus on
// display id when none is specifically chosen: the first tiled
// window, else fullscreen, else floating. Used by both the effect
// executor's FocusVisibleWindowIfNeeded effect and the command
// processor's read-only OutputFocus/ExecOrFocus lookups.
func (s *State) PreferredVisibleWindow(id model.DisplayID) (*model.Window, bool) {
	visible := s.VisibleWindowsOnDisplay(id)
	var tiled, fullscreen, floating *model.Window
	for _, w := range visible {
		switch {
		case w.IsTiled() && tiled == nil:
			tiled = w
		case w.IsFullscreen && fullscreen == nil:
			fullscreen = w
		case w.IsFloating && floating == nil:
			floating = w
		}
	}
	switch {
	case tiled != nil:
		return tiled, true
	case fullscreen != nil:
		return fullscreen, true
	case floating != nil:
		return floating, true
	default:
		return nil, false
	}
}

// findSwapTarget locates the swap partner without changing focus: for
// Next/Prev the neighbour in stackOrder (tiling order, then floating
// by id), which can differ from the id-ordered candidate
// FocusInDirection picks; for spatial directions the same nearest
// window FocusInDirection would focus.
func (s *State) findSwapTarget(dir Direction) (model.WindowID, bool) {
	cur, ok := s.FocusedWindow()
	if !ok {
		return 0, false
	}
	if dir == DirNext || dir == DirPrev {
		order := s.stackOrder(s.FocusedDisplay)
		idx := indexOf(order, cur.ID)
		if idx < 0 || len(order) < 2 {
			return 0, false
		}
		var next int
		if dir == DirNext {
			next = (idx + 1) % len(order)
		} else {
			next = (idx - 1 + len(order)) % len(order)
		}
		return order[next], true
	}
	cx, cy := cur.Center()
	var best *model.Window
	bestDist := 0
	for _, w := range s.VisibleWindowsOnDisplay(s.FocusedDisplay) {
		if w.ID == cur.ID {
			continue
		}
		wx, wy := w.Center()
		dx, dy := wx-cx, wy-cy
		var inDirection bool
		switch dir {
		case DirLeft:
			inDirection = dx < 0
		case DirRight:
			inDirection = dx > 0
		case DirUp:
			inDirection = dy < 0
		case DirDown:
			inDirection = dy > 0
		}
		if !inDirection {
			continue
		}
		dist := abs(dx) + abs(dy)
		if best == nil || dist < bestDist {
			best, bestDist = w, dist
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

// SwapWindow exchanges the focused window's tiling-order position
// with the window found in dir (only meaningful when both are tiled
// on the same display; a no-op otherwise).
func (s *State) SwapWindow(dir Direction) bool {
	cur, ok := s.FocusedWindow()
	if !ok {
		return false
	}
	targetID, ok := s.findSwapTarget(dir)
	if !ok {
		return false
	}
	target, ok := s.Window(targetID)
	if !ok || !cur.IsTiled() || !target.IsTiled() || cur.DisplayID != target.DisplayID {
		return false
	}
	d, ok := s.Display(cur.DisplayID)
	if !ok {
		return false
	}
	i, j := indexOf(d.WindowOrder, cur.ID), indexOf(d.WindowOrder, target.ID)
	if i < 0 || j < 0 {
		return false
	}
	d.WindowOrder[i], d.WindowOrder[j] = d.WindowOrder[j], d.WindowOrder[i]
	return true
}

// orderedDisplayIDs returns display ids sorted left-to-right by frame
// X, breaking ties by id, giving Next/Prev a stable spatial meaning.
func (s *State) orderedDisplayIDs() []model.DisplayID {
	ids := s.DisplayIDs()
	sort.Slice(ids, func(i, j int) bool {
		di, dj := s.Displays[ids[i]], s.Displays[ids[j]]
		if di.Frame.X != dj.Frame.X {
			return di.Frame.X < dj.Frame.X
		}
		return ids[i] < ids[j]
	})
	return ids
}

// FocusOutput moves display focus to the next/previous display.
func (s *State) FocusOutput(dir OutputDirection) bool {
	ids := s.orderedDisplayIDs()
	if len(ids) == 0 {
		return false
	}
	idx := indexOfDisplay(ids, s.FocusedDisplay)
	var next int
	switch {
	case idx < 0:
		next = 0
	case dir == OutputNext:
		next = (idx + 1) % len(ids)
	default:
		next = (idx - 1 + len(ids)) % len(ids)
	}
	s.FocusedDisplay = ids[next]
	return true
}

func indexOfDisplay(ids []model.DisplayID, id model.DisplayID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// SendToOutput moves the focused window to the next/previous display,
// keeping its tags, and hides/shows it there as appropriate. Returns
// the resulting window moves.
func (s *State) SendToOutput(dir OutputDirection) []platform.WindowMove {
	cur, ok := s.FocusedWindow()
	if !ok {
		return nil
	}
	ids := s.orderedDisplayIDs()
	if len(ids) < 2 {
		return nil
	}
	idx := indexOfDisplay(ids, cur.DisplayID)
	var next int
	switch {
	case idx < 0:
		next = 0
	case dir == OutputNext:
		next = (idx + 1) % len(ids)
	default:
		next = (idx - 1 + len(ids)) % len(ids)
	}
	newDisplay := ids[next]
	if newDisplay == cur.DisplayID {
		return nil
	}
	oldDisplay := cur.DisplayID
	if d, ok := s.Display(oldDisplay); ok && cur.IsTiled() {
		d.RemoveFromWindowOrder(cur.ID)
	}
	cur.DisplayID = newDisplay
	if d, ok := s.Display(newDisplay); ok && cur.IsTiled() {
		d.AddToWindowOrder(cur.ID)
	}
	move, _ := s.recomputeVisibility(cur)
	if move.WindowID != 0 {
		return []platform.WindowMove{move}
	}
	return nil
}
