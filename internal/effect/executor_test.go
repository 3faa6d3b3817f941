package effect

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/config"
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
)

func newExecutor() (*Executor, *state.State, *platform.MockWindowManipulator) {
	s := state.New()
	s.Displays[1] = model.NewDisplay(1, "d1", geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, true)
	m := platform.NewMockWindowManipulator()
	e := NewExecutor(s, m, layoutengine.NewManager())
	return e, s, m
}

func TestApplyWindowMovesForwardsToManipulator(t *testing.T) {
	e, _, m := newExecutor()
	moves := []platform.WindowMove{{WindowID: 100, PID: 1, OldX: 0, OldY: 0, NewX: -799, NewY: 1079}}
	e.Apply([]Effect{ApplyWindowMoves(moves)})
	if len(m.AppliedMoves) != 1 || len(m.AppliedMoves[0]) != 1 || m.AppliedMoves[0][0] != moves[0] {
		t.Fatalf("expected move forwarded, got %+v", m.AppliedMoves)
	}
}

func TestApplyWindowMovesSkipsEmptyList(t *testing.T) {
	e, _, m := newExecutor()
	e.Apply([]Effect{ApplyWindowMoves(nil)})
	if len(m.AppliedMoves) != 0 {
		t.Fatalf("expected no call for an empty move list, got %+v", m.AppliedMoves)
	}
}

func TestFocusWindowUpdatesStateAndWarpsCursorWhenConfigured(t *testing.T) {
	e, s, m := newExecutor()
	s.Config.CursorWarp = config.CursorWarpOnFocusChange
	w := &model.Window{ID: 100, PID: 1, DisplayID: 1, Frame: geom.Rect{X: 0, Y: 0, Width: 800, Height: 600}}
	s.Windows[100] = w

	e.Apply([]Effect{FocusWindow(100, 1)})

	if s.Focused == nil || *s.Focused != 100 {
		t.Fatalf("expected focus set to 100, got %v", s.Focused)
	}
	if s.FocusedDisplay != 1 {
		t.Fatalf("expected focused display 1, got %d", s.FocusedDisplay)
	}
	if len(m.Focused) != 1 || m.Focused[0] != 100 {
		t.Fatalf("expected manipulator.FocusWindow(100), got %+v", m.Focused)
	}
	if len(m.Warped) != 1 {
		t.Fatalf("expected a cursor warp to the window center, got %+v", m.Warped)
	}
	cx, cy := w.Center()
	if m.Warped[0] != [2]int{cx, cy} {
		t.Fatalf("expected warp to (%d,%d), got %v", cx, cy, m.Warped[0])
	}
}

func TestFocusWindowDoesNotWarpCursorWhenDisabled(t *testing.T) {
	e, s, m := newExecutor()
	s.Windows[100] = &model.Window{ID: 100, PID: 1, DisplayID: 1, Frame: geom.Rect{X: 0, Y: 0, Width: 800, Height: 600}}

	e.Apply([]Effect{FocusWindow(100, 1)})

	if len(m.Warped) != 0 {
		t.Fatalf("expected no warp with CursorWarpDisabled, got %+v", m.Warped)
	}
}

func TestApplyFullscreenSubtractsOuterGap(t *testing.T) {
	e, s, m := newExecutor()
	s.Config.OuterGap = config.All(10)
	w := &model.Window{ID: 100, PID: 1, DisplayID: 1}
	s.Windows[100] = w
	frame := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	e.Apply([]Effect{ApplyFullscreen(100, 1, frame)})

	if m.LastFrame != [4]int{10, 10, 1900, 1060} {
		t.Fatalf("expected frame {10,10,1900,1060} after gap subtraction, got %+v", m.LastFrame)
	}
}

func TestCloseAndTerminateForwardToManipulator(t *testing.T) {
	e, _, m := newExecutor()
	e.Apply([]Effect{CloseWindow(100, 1), TerminateProcess(1)})
	if len(m.Closed) != 1 || m.Closed[0] != 100 {
		t.Fatalf("expected CloseWindow(100), got %+v", m.Closed)
	}
	if len(m.Terminated) != 1 || m.Terminated[0] != 1 {
		t.Fatalf("expected TerminateProcess(1), got %+v", m.Terminated)
	}
}

func TestWarpCursorAndWarpCursorToDisplay(t *testing.T) {
	e, s, m := newExecutor()
	s.Config.CursorWarp = config.CursorWarpOnOutputChange
	e.Apply([]Effect{WarpCursor(50, 60), WarpCursorToDisplay(1)})
	if len(m.Warped) != 2 {
		t.Fatalf("expected two warps, got %+v", m.Warped)
	}
	if m.Warped[0] != [2]int{50, 60} {
		t.Fatalf("expected explicit warp to (50,60), got %v", m.Warped[0])
	}
	cx, cy := s.Displays[1].Frame.Center()
	if m.Warped[1] != [2]int{cx, cy} {
		t.Fatalf("expected display-center warp to (%d,%d), got %v", cx, cy, m.Warped[1])
	}
}

func TestWarpCursorToDisplayDisabledIsNoop(t *testing.T) {
	e, s, m := newExecutor()
	s.Config.CursorWarp = config.CursorWarpDisabled
	e.Apply([]Effect{WarpCursorToDisplay(1)})
	if len(m.Warped) != 0 {
		t.Fatalf("expected no warp when cursor warp disabled, got %+v", m.Warped)
	}
}

func TestExecCommandTrackedRecordsProcess(t *testing.T) {
	e, s, m := newExecutor()
	e.Apply([]Effect{ExecCommandTracked("/usr/bin/foo")})
	if len(m.ExecTracked) != 1 || m.ExecTracked[0] != "/usr/bin/foo" {
		t.Fatalf("expected ExecCommandTracked call, got %+v", m.ExecTracked)
	}
	if len(s.TrackedProcesses) != 1 || s.TrackedProcesses[0].Command != "/usr/bin/foo" {
		t.Fatalf("expected a tracked process recorded, got %+v", s.TrackedProcesses)
	}
}

// A failing FocusWindow must not block a later effect in the same
// batch from applying (spec §9 open question (a): continue-on-error).
func TestApplyContinuesPastAFailingEffect(t *testing.T) {
	e, s, m := newExecutor()
	s.Windows[100] = &model.Window{ID: 100, PID: 1, DisplayID: 1}
	m.FailNextFocus = true

	e.Apply([]Effect{FocusWindow(100, 1), CloseWindow(100, 1)})

	if s.Focused != nil {
		t.Fatalf("expected focus to remain unset after a failed FocusWindow, got %v", s.Focused)
	}
	if len(m.Closed) != 1 || m.Closed[0] != 100 {
		t.Fatalf("expected CloseWindow to still run after the failing effect, got %+v", m.Closed)
	}
}
