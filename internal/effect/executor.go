package effect

import (
	"strconv"

	"github.com/kaedewm/yashiki/internal/config"
	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
)

// Executor applies Effect values against the platform and layout
// engines, mutating State where a side effect has a direct state
// consequence (the focused window, tracked processes, tiling order).
type Executor struct {
	State       *state.State
	Manipulator platform.WindowManipulator
	Layouts     *layoutengine.Manager
}

func NewExecutor(s *state.State, m platform.WindowManipulator, l *layoutengine.Manager) *Executor {
	return &Executor{State: s, Manipulator: m, Layouts: l}
}

// Apply executes every effect in order. A failing effect is logged
// and does not block or roll back the rest of the list (spec §9 open
// question (a): continue-on-error).
func (e *Executor) Apply(effects []Effect) {
	for _, eff := range effects {
		if err := e.apply(eff); err != nil {
			diag.Warnf("effect %d failed: %v", eff.Kind, err)
		}
	}
}

func (e *Executor) apply(eff Effect) error {
	switch eff.Kind {
	case KindApplyWindowMoves:
		if len(eff.Moves) == 0 {
			return nil
		}
		return e.Manipulator.ApplyWindowMoves(eff.Moves)

	case KindFocusWindow:
		if err := e.Manipulator.FocusWindow(uint32(eff.WindowID), eff.PID); err != nil {
			return err
		}
		e.State.Focused = &eff.WindowID
		if w, ok := e.State.Window(eff.WindowID); ok {
			e.State.FocusedDisplay = w.DisplayID
			warp := e.State.Config.CursorWarp == config.CursorWarpOnFocusChange ||
				(eff.IsOutputChange && e.State.Config.CursorWarp == config.CursorWarpOnOutputChange)
			if warp {
				x, y := w.Center()
				_ = e.Manipulator.WarpCursor(x, y)
			}
		}
		if needsRetile, err := e.notifyLayoutFocus(e.State.FocusedDisplay, eff.WindowID); err == nil && needsRetile {
			e.retileDisplay(e.State.FocusedDisplay)
		}
		return nil

	case KindMoveWindowToPosition:
		return e.Manipulator.MoveWindowToPosition(uint32(eff.WindowID), eff.PID, eff.X, eff.Y)

	case KindSetWindowDimensions:
		return e.Manipulator.SetWindowDimensions(uint32(eff.WindowID), eff.PID, eff.W, eff.H)

	case KindSetWindowFrame:
		return e.Manipulator.SetWindowFrame(uint32(eff.WindowID), eff.PID, eff.X, eff.Y, eff.W, eff.H)

	case KindApplyFullscreen:
		gap := e.State.Config.OuterGap
		x := eff.Frame.X + gap.Left
		y := eff.Frame.Y + gap.Top
		w := saturatingSub(uint32(eff.Frame.Width), uint32(gap.Horizontal()))
		h := saturatingSub(uint32(eff.Frame.Height), uint32(gap.Vertical()))
		return e.Manipulator.SetWindowFrame(uint32(eff.WindowID), eff.PID, x, y, uint32(w), uint32(h))

	case KindCloseWindow:
		return e.Manipulator.CloseWindow(uint32(eff.WindowID), eff.PID)

	case KindTerminateProcess:
		return e.Manipulator.TerminateProcess(eff.PID)

	case KindWarpCursor:
		return e.Manipulator.WarpCursor(eff.X, eff.Y)

	case KindWarpCursorToDisplay:
		if e.State.Config.CursorWarp == config.CursorWarpDisabled {
			return nil
		}
		if d, ok := e.State.Display(eff.DisplayID); ok {
			x, y := d.Frame.Center()
			return e.Manipulator.WarpCursor(x, y)
		}
		return nil

	case KindExecCommand:
		return e.Manipulator.ExecCommand(eff.Cmdline, e.State.Config.ExecPath)

	case KindExecCommandTracked:
		pid, err := e.Manipulator.ExecCommandTracked(eff.Cmdline, e.State.Config.ExecPath)
		if err != nil {
			return err
		}
		e.State.TrackedProcesses = append(e.State.TrackedProcesses, state.TrackedProcess{PID: pid, Command: eff.Cmdline})
		return nil

	case KindRetile:
		for _, id := range e.State.DisplayIDs() {
			e.retileDisplay(id)
		}
		return nil

	case KindRetileDisplays:
		for _, id := range eff.DisplayIDs {
			e.retileDisplay(id)
		}
		return nil

	case KindSendLayoutCommand:
		layout := eff.Layout
		name := ""
		if layout != nil {
			name = *layout
		} else {
			name = e.State.LayoutForDisplay(eff.DisplayID)
		}
		needsRetile, err := e.Layouts.SendCommand(name, eff.LayoutCmd, eff.LayoutArgs)
		if err != nil {
			return err
		}
		if needsRetile {
			e.retileDisplay(eff.DisplayID)
		}
		return nil

	case KindUpdateLayoutExecPath:
		e.Layouts.SetExecPath(eff.ExecPath)
		e.State.Config.ExecPath = eff.ExecPath
		return nil

	case KindFocusVisibleWindowIfNeeded:
		e.focusVisibleWindowIfNeeded(eff.DisplayID)
		return nil

	default:
		return nil
	}
}

func saturatingSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// notifyLayoutFocus tells the display's current layout engine that
// focus changed to windowID, returning whether it asked for a retile
// (spec §4.5: "notify the layout engine (focus-changed <id>)").
func (e *Executor) notifyLayoutFocus(id model.DisplayID, windowID model.WindowID) (bool, error) {
	name := e.State.LayoutForDisplay(id)
	args := []string{strconv.FormatUint(uint64(windowID), 10)}
	return e.Layouts.SendCommand(name, "focus-changed", args)
}

// retileDisplay recomputes layout for one display: fullscreen windows
// are force-resized first, then the remaining tiled windows are
// handed to the layout engine and the reply applied.
func (e *Executor) retileDisplay(id model.DisplayID) {
	d, ok := e.State.Display(id)
	if !ok {
		return
	}
	gap := e.State.Config.OuterGap

	for _, w := range e.State.VisibleWindowsOnDisplay(id) {
		if !w.IsFullscreen {
			continue
		}
		x := d.Frame.X + gap.Left
		y := d.Frame.Y + gap.Top
		width := saturatingSub(uint32(d.Frame.Width), uint32(gap.Horizontal()))
		height := saturatingSub(uint32(d.Frame.Height), uint32(gap.Vertical()))
		if err := e.Manipulator.SetWindowFrame(uint32(w.ID), w.PID, x, y, width, height); err != nil {
			diag.Warnf("fullscreen resize for window %d failed: %v", w.ID, err)
			continue
		}
		w.Frame = geom.Rect{X: x, Y: y, Width: int(width), Height: int(height)}
	}

	tiled := e.State.TiledWindowsInOrder(id)
	if len(tiled) == 0 {
		return
	}
	usableW := saturatingSub(uint32(d.Frame.Width), uint32(gap.Horizontal()))
	usableH := saturatingSub(uint32(d.Frame.Height), uint32(gap.Vertical()))

	ids := make([]uint32, len(tiled))
	for i, wid := range tiled {
		ids[i] = uint32(wid)
	}

	layoutName := e.State.LayoutForDisplay(id)
	geometries, err := e.Layouts.RequestLayout(layoutName, usableW, usableH, ids)
	if err != nil {
		diag.Warnf("layout request for display %d failed: %v", id, err)
		return
	}

	newOrder := make([]model.WindowID, 0, len(geometries))
	moves := make([]platform.WindowMove, 0, len(geometries))
	for _, g := range geometries {
		wid := model.WindowID(g.ID)
		newOrder = append(newOrder, wid)
		w, ok := e.State.Window(wid)
		if !ok {
			continue
		}
		x := g.X + gap.Left
		y := g.Y + gap.Top
		moves = append(moves, platform.WindowMove{
			WindowID: g.ID, PID: w.PID,
			OldX: w.Frame.X, OldY: w.Frame.Y,
			NewX: x, NewY: y,
		})
		w.Frame = geom.Rect{X: x, Y: y, Width: int(g.Width), Height: int(g.Height)}
	}
	d.WindowOrder = newOrder

	platformGeoms := make([]platform.WindowGeometry, len(geometries))
	for i, g := range geometries {
		platformGeoms[i] = platform.WindowGeometry{ID: g.ID, X: g.X + gap.Left, Y: g.Y + gap.Top, Width: g.Width, Height: g.Height}
	}
	if err := e.Manipulator.ApplyLayout(uint32(id), d.Frame, platformGeoms); err != nil {
		diag.Warnf("apply layout for display %d failed: %v", id, err)
	}
}

// focusVisibleWindowIfNeeded refocuses to a visible window on id when
// the currently focused window is no longer visible there, preferring
// tiled, then fullscreen, then floating windows.
func (e *Executor) focusVisibleWindowIfNeeded(id model.DisplayID) {
	if cur, ok := e.State.FocusedWindow(); ok {
		if d, ok := e.State.Display(id); ok && cur.DisplayID == id && cur.Tags.Intersects(d.VisibleTags) {
			return
		}
	}
	pick, ok := e.State.PreferredVisibleWindow(id)
	if !ok {
		return
	}
	if err := e.Manipulator.FocusWindow(uint32(pick.ID), pick.PID); err != nil {
		diag.Warnf("focus-visible-if-needed: %v", err)
		return
	}
	e.State.Focused = &pick.ID
	e.State.FocusedDisplay = id
	if e.State.Config.CursorWarp == config.CursorWarpOnFocusChange {
		x, y := pick.Center()
		_ = e.Manipulator.WarpCursor(x, y)
	}
	if needsRetile, err := e.notifyLayoutFocus(id, pick.ID); err == nil && needsRetile {
		e.retileDisplay(id)
	}
}
