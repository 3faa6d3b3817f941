package sync

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
	"github.com/kaedewm/yashiki/internal/tag"
)

func newStateWithDisplay(t *testing.T, id uint32, frame geom.Bounds) *state.State {
	t.Helper()
	s := state.New()
	s.HandleDisplayChange([]platform.DisplayInfo{{ID: id, Name: "main", Frame: frame, IsMain: true}})
	return s
}

func TestSyncAllAddsNewWindows(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Name: "main", Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 10, Y: 10, Width: 400, Height: 300}},
		})

	res, _ := SyncAll(s, ws)

	if !res.Changed {
		t.Fatalf("expected Changed=true")
	}
	if len(res.NewWindowIDs) != 1 || res.NewWindowIDs[0] != 10 {
		t.Fatalf("expected new window 10, got %v", res.NewWindowIDs)
	}
	w, ok := s.Window(10)
	if !ok {
		t.Fatalf("window 10 not registered")
	}
	if w.DisplayID != 1 {
		t.Fatalf("expected window on display 1, got %d", w.DisplayID)
	}
	if w.Tags != s.DefaultTag {
		t.Fatalf("expected initial tag to be display's visible tags (%v), got %v", s.DefaultTag, w.Tags)
	}
}

func TestSyncAllRemovesVanishedWindows(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 0, Y: 0, Width: 400, Height: 300}},
		})

	SyncAll(s, ws)
	if _, ok := s.Window(10); !ok {
		t.Fatalf("precondition: window 10 should exist after first sync")
	}

	ws.RemoveWindow(10)
	res, _ := SyncAll(s, ws)

	if !res.Changed {
		t.Fatalf("expected Changed=true after removal")
	}
	if _, ok := s.Window(10); ok {
		t.Fatalf("window 10 should have been removed")
	}
}

func TestSyncAllExcludesControlCenter(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 20, PID: 5, Name: "Control Center", OwnerName: "Control Center", BundleID: "com.apple.controlcenter", Bounds: geom.Bounds{X: 900, Y: 0, Width: 50, Height: 50}},
		})

	res, _ := SyncAll(s, ws)

	if res.Changed {
		t.Fatalf("expected control center window to be excluded, got Changed=true new=%v", res.NewWindowIDs)
	}
	if _, ok := s.Window(20); ok {
		t.Fatalf("control center window should never be registered")
	}
}

func TestSyncPIDScopesToOwningProcess(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "a", OwnerName: "App A", Bounds: geom.Bounds{X: 0, Y: 0, Width: 200, Height: 200}},
			{WindowID: 11, PID: 200, Name: "b", OwnerName: "App B", Bounds: geom.Bounds{X: 0, Y: 0, Width: 200, Height: 200}},
		})

	res := SyncPID(s, ws, 100)

	if !res.Changed || len(res.NewWindowIDs) != 1 || res.NewWindowIDs[0] != 10 {
		t.Fatalf("expected only pid 100's window synced, got %+v", res)
	}
	if _, ok := s.Window(11); ok {
		t.Fatalf("window scoped to a different pid should not have been synced")
	}
}

func TestSyncAllDetectsRehideDrift(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 0, Y: 0, Width: 400, Height: 300}},
		})
	SyncAll(s, ws)

	w, ok := s.Window(10)
	if !ok {
		t.Fatalf("window 10 should exist")
	}
	// Hide it on a tag the display no longer shows, then report the
	// platform having moved it away from its assigned hide corner —
	// simulating the OS repositioning a parked window on, say, a
	// Spaces switch.
	s.SetWindowTags(10, tag.New(2))
	if !w.IsHidden() {
		t.Fatalf("window should be hidden after moving off the visible tag")
	}
	hideX, hideY := s.ExpectedHidePosition(w.DisplayID, w.Frame.Width, w.Frame.Height)

	drifted := ws.Windows[0]
	drifted.Bounds = geom.Bounds{X: float64(hideX + 40), Y: float64(hideY + 40), Width: 400, Height: 300}
	ws.WithWindows([]platform.WindowInfo{drifted})

	res, _ := SyncAll(s, ws)

	if len(res.RehideMoves) != 1 {
		t.Fatalf("expected one rehide move, got %d", len(res.RehideMoves))
	}
	move := res.RehideMoves[0]
	if move.NewX != hideX || move.NewY != hideY {
		t.Fatalf("expected rehide move back to (%d,%d), got (%d,%d)", hideX, hideY, move.NewX, move.NewY)
	}
}

func TestSyncFocusedWindowKnownID(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 0, Y: 0, Width: 400, Height: 300}},
		})
	SyncAll(s, ws)

	id := uint32(10)
	ws.SetFocused(&id)

	SyncFocusedWindow(s, ws, nil)

	if s.Focused == nil || *s.Focused != model.WindowID(10) {
		t.Fatalf("expected window 10 focused, got %v", s.Focused)
	}
	if s.FocusedDisplay != 1 {
		t.Fatalf("expected focused display 1, got %d", s.FocusedDisplay)
	}
}

func TestSyncFocusedWindowFallsBackToPIDHint(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 0, Y: 0, Width: 400, Height: 300}},
		})
	SyncAll(s, ws)

	// Platform reports no focus at all (e.g. a workspace-activation
	// notice arriving before accessibility catches up).
	pid := 100
	SyncFocusedWindow(s, ws, &pid)

	if s.Focused == nil || *s.Focused != model.WindowID(10) {
		t.Fatalf("expected fallback focus to pid 100's window, got %v", s.Focused)
	}
}

func TestSyncFocusedWindowClearsWhenNothingMatches(t *testing.T) {
	s := newStateWithDisplay(t, 1, geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800})
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}})

	id := uint32(99)
	existing := model.WindowID(1)
	s.Focused = &existing
	ws.SetFocused(&id)

	SyncFocusedWindow(s, ws, nil)

	if s.Focused != nil {
		t.Fatalf("expected focus cleared, got %v", s.Focused)
	}
}
