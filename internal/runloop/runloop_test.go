package runloop

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kaedewm/yashiki/internal/command"
	"github.com/kaedewm/yashiki/internal/effect"
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/hotkey"
	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
)

func newTestLoop(t *testing.T, ws *platform.MockWindowSystem, manip *platform.MockWindowManipulator) *Loop {
	t.Helper()
	s := state.New()
	store := hotkey.NewStore()
	layouts := layoutengine.NewManager()
	ex := effect.NewExecutor(s, manip, layouts)
	return New(s, store, layouts, ex, ws)
}

func TestPostCommandRoundTrips(t *testing.T) {
	ws := platform.NewMockWindowSystem()
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)

	go l.Run()
	defer l.Stop()

	resp := l.PostCommand(command.Command{Type: command.KindGetState})
	if resp.Type != command.RespState {
		t.Fatalf("expected a state response, got %q", resp.Type)
	}
}

func TestQuitCommandIsProcessed(t *testing.T) {
	ws := platform.NewMockWindowSystem()
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)

	go l.Run()
	defer l.Stop()

	resp := l.PostCommand(command.Command{Type: command.KindQuit})
	if resp.Type != command.RespOk {
		t.Fatalf("expected ok response to quit, got %q", resp.Type)
	}
}

func TestHotkeyFiresBoundCommand(t *testing.T) {
	ws := platform.NewMockWindowSystem()
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)

	hk := hotkey.Hotkey{Modifiers: hotkey.ModCmd, Key: "Q"}
	raw, err := json.Marshal(command.Command{Type: command.KindExec, Command: "true"})
	if err != nil {
		t.Fatal(err)
	}
	l.Hotkeys.Bind(hk, raw)

	go l.Run()
	defer l.Stop()

	l.PostHotkey(hk)
	// Drain the loop once more through a command round trip to ensure
	// the hotkey was processed before the assertion runs.
	l.PostCommand(command.Command{Type: command.KindGetState})

	if len(manip.Exec) != 1 || manip.Exec[0] != "true" {
		t.Fatalf("expected the bound exec command to run, got %v", manip.Exec)
	}
}

func TestBootstrapSyncsPlatformWindows(t *testing.T) {
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Name: "main", Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}}).
		WithWindows([]platform.WindowInfo{
			{WindowID: 10, PID: 100, Name: "term", OwnerName: "Terminal", Bounds: geom.Bounds{X: 0, Y: 0, Width: 400, Height: 300}},
		})
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)

	l.Bootstrap()

	if _, ok := l.State.Window(10); !ok {
		t.Fatalf("expected window 10 to be registered after bootstrap")
	}
	if !l.State.InitCompleted {
		t.Fatalf("expected Bootstrap to mark InitCompleted")
	}
}

func TestWindowUnderPointPrefersSmallerTopmostWindow(t *testing.T) {
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}})
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)
	l.State.HandleDisplayChange(ws.AllDisplays())

	big := &model.Window{ID: 1, PID: 1, DisplayID: 1, Frame: geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}, Tags: l.State.DefaultTag}
	small := &model.Window{ID: 2, PID: 2, DisplayID: 1, Frame: geom.Rect{X: 100, Y: 100, Width: 200, Height: 200}, Tags: l.State.DefaultTag}
	l.State.Windows[1] = big
	l.State.Windows[2] = small

	got, ok := l.windowUnderPoint(150, 150)
	if !ok || got.ID != 2 {
		t.Fatalf("expected the smaller overlapping window (2), got %+v", got)
	}
}

func TestAutoRaiseFocusesAfterDwell(t *testing.T) {
	ws := platform.NewMockWindowSystem().
		WithDisplays([]platform.DisplayInfo{{ID: 1, Frame: geom.Bounds{X: 0, Y: 0, Width: 1000, Height: 800}, IsMain: true}})
	manip := platform.NewMockWindowManipulator()
	l := newTestLoop(t, ws, manip)
	l.State.HandleDisplayChange(ws.AllDisplays())
	l.AutoRaiseDelay = 0

	w := &model.Window{ID: 5, PID: 50, DisplayID: 1, Frame: geom.Rect{X: 0, Y: 0, Width: 200, Height: 200}, Tags: l.State.DefaultTag}
	l.State.Windows[5] = w

	l.handleMouse(MousePosition{X: 10, Y: 10})
	time.Sleep(time.Millisecond)
	l.handleMouse(MousePosition{X: 11, Y: 11})

	if len(manip.Focused) != 1 || manip.Focused[0] != 5 {
		t.Fatalf("expected auto-raise to focus window 5, got %v", manip.Focused)
	}
}
