// Package state owns the single in-memory State: the window/display
// registry, tag visibility, focus, tracked exec'd processes, and
// runtime config. Every mutator here is synchronous and
// single-threaded by construction (spec §3, §9) — callers serialize
// access through internal/runloop's single select loop.
package state

import (
	"github.com/kaedewm/yashiki/internal/config"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/rules"
	"github.com/kaedewm/yashiki/internal/tag"
)

// TrackedProcess is a process launched via a tracked exec command,
// kept so a later "kill tracked processes for tag" style operation
// (or simple bookkeeping) can find it again.
type TrackedProcess struct {
	PID     int
	Command string
}

// Config bundles the runtime settings that live alongside State but
// are not part of the window/display model itself.
type Config struct {
	OuterGap   config.OuterGap
	CursorWarp config.CursorWarpMode
	ExecPath   string
}

// State is the complete window-manager model at a point in time.
type State struct {
	Windows  map[model.WindowID]*model.Window
	Displays map[model.DisplayID]*model.Display

	Focused        *model.WindowID
	FocusedDisplay model.DisplayID

	DefaultTag    tag.Tag
	DefaultLayout string
	// TagLayouts maps a single-tag number (1-32) to a layout name
	// override; absent entries use DefaultLayout.
	TagLayouts map[int]string

	Rules *rules.Engine

	TrackedProcesses []TrackedProcess

	Config Config

	// InitCompleted is false until the first full sync after daemon
	// startup completes; rules added before that point are seeded
	// rules and never retroactively reclassify already-synced windows
	// (spec's supplemented RuleAdd timing behavior).
	InitCompleted bool
}

// New returns an empty State with tag 1 as the default visible tag.
func New() *State {
	return &State{
		Windows:       make(map[model.WindowID]*model.Window),
		Displays:      make(map[model.DisplayID]*model.Display),
		DefaultTag:    tag.New(1),
		DefaultLayout: "tatami",
		TagLayouts:    make(map[int]string),
		Rules:         rules.NewEngine(),
	}
}

// Window looks up a window by id.
func (s *State) Window(id model.WindowID) (*model.Window, bool) {
	w, ok := s.Windows[id]
	return w, ok
}

// Display looks up a display by id.
func (s *State) Display(id model.DisplayID) (*model.Display, bool) {
	d, ok := s.Displays[id]
	return d, ok
}

// FocusedWindow returns the currently focused window, if any.
func (s *State) FocusedWindow() (*model.Window, bool) {
	if s.Focused == nil {
		return nil, false
	}
	return s.Window(*s.Focused)
}

// CurrentLayout returns the focused display's effective layout name,
// falling back to DefaultLayout when unset.
func (s *State) CurrentLayout() string {
	if d, ok := s.Display(s.FocusedDisplay); ok && d.CurrentLayout != "" {
		return d.CurrentLayout
	}
	return s.DefaultLayout
}

// LayoutForDisplay returns display d's effective layout name.
func (s *State) LayoutForDisplay(id model.DisplayID) string {
	if d, ok := s.Display(id); ok && d.CurrentLayout != "" {
		return d.CurrentLayout
	}
	return s.DefaultLayout
}

// DisplayIDs returns every known display id, in no particular order.
func (s *State) DisplayIDs() []model.DisplayID {
	out := make([]model.DisplayID, 0, len(s.Displays))
	for id := range s.Displays {
		out = append(out, id)
	}
	return out
}

// VisibleWindowsOnDisplay returns every window on display id whose
// tags intersect the display's currently visible tags.
func (s *State) VisibleWindowsOnDisplay(id model.DisplayID) []*model.Window {
	d, ok := s.Display(id)
	if !ok {
		return nil
	}
	var out []*model.Window
	for _, w := range s.Windows {
		if w.DisplayID == id && w.Tags.Intersects(d.VisibleTags) {
			out = append(out, w)
		}
	}
	return out
}

// TiledWindowsInOrder returns display id's visible, tiled windows in
// WindowOrder, dropping any stale ids no longer tiled/visible and
// appending any visible tiled windows missing from WindowOrder.
func (s *State) TiledWindowsInOrder(id model.DisplayID) []model.WindowID {
	d, ok := s.Display(id)
	if !ok {
		return nil
	}
	visible := make(map[model.WindowID]bool)
	for _, w := range s.VisibleWindowsOnDisplay(id) {
		if w.IsTiled() {
			visible[w.ID] = true
		}
	}
	out := make([]model.WindowID, 0, len(visible))
	seen := make(map[model.WindowID]bool)
	for _, wid := range d.WindowOrder {
		if visible[wid] {
			out = append(out, wid)
			seen[wid] = true
		}
	}
	for wid := range visible {
		if !seen[wid] {
			out = append(out, wid)
		}
	}
	return out
}
