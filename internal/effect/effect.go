// Package effect defines the tagged-union Effect values produced by
// the pure command processor (internal/command) and the Executor that
// performs the real I/O they describe: platform window/cursor/process
// manipulation and layout-engine subprocess requests (spec §4.4,
// §9 open question (a)).
package effect

import (
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
)

// Kind discriminates the tagged-union Effect.
type Kind int

const (
	KindApplyWindowMoves Kind = iota
	KindFocusWindow
	KindMoveWindowToPosition
	KindSetWindowDimensions
	KindSetWindowFrame
	KindApplyFullscreen
	KindCloseWindow
	KindTerminateProcess
	KindWarpCursor
	KindWarpCursorToDisplay
	KindExecCommand
	KindExecCommandTracked
	KindRetile
	KindRetileDisplays
	KindSendLayoutCommand
	KindUpdateLayoutExecPath
	KindFocusVisibleWindowIfNeeded
)

// Effect is a single side-effect request. Only the fields relevant to
// Kind are populated; this mirrors the source's enum-of-structs using
// one struct with a discriminant, the pattern already established by
// internal/rules.Action.
type Effect struct {
	Kind Kind

	Moves []platform.WindowMove // ApplyWindowMoves

	WindowID model.WindowID // FocusWindow, MoveWindowToPosition, SetWindowDimensions, SetWindowFrame, ApplyFullscreen, CloseWindow
	PID      int

	// IsOutputChange marks a FocusWindow effect issued as a side effect
	// of changing the focused display (OutputFocus), so the executor
	// can apply CursorWarpOnOutputChange as well as CursorWarpOnFocusChange.
	IsOutputChange bool

	X, Y int    // MoveWindowToPosition, SetWindowFrame, WarpCursor
	W, H uint32 // SetWindowDimensions, SetWindowFrame

	Frame geom.Rect // ApplyFullscreen: the display's frame, pre-gap

	DisplayID  model.DisplayID   // WarpCursorToDisplay, SendLayoutCommand, FocusVisibleWindowIfNeeded
	DisplayIDs []model.DisplayID // RetileDisplays

	Cmdline string // ExecCommand, ExecCommandTracked

	Layout     *string // SendLayoutCommand: nil means "use the display's current layout"
	LayoutCmd  string
	LayoutArgs []string

	ExecPath string // UpdateLayoutExecPath
}

func ApplyWindowMoves(moves []platform.WindowMove) Effect {
	return Effect{Kind: KindApplyWindowMoves, Moves: moves}
}

func FocusWindow(id model.WindowID, pid int) Effect {
	return Effect{Kind: KindFocusWindow, WindowID: id, PID: pid}
}

// FocusWindowWithOutputChange is FocusWindow issued because the
// focused display just changed (OutputFocus), enabling
// CursorWarpOnOutputChange in addition to CursorWarpOnFocusChange.
func FocusWindowWithOutputChange(id model.WindowID, pid int) Effect {
	return Effect{Kind: KindFocusWindow, WindowID: id, PID: pid, IsOutputChange: true}
}

func MoveWindowToPosition(id model.WindowID, pid, x, y int) Effect {
	return Effect{Kind: KindMoveWindowToPosition, WindowID: id, PID: pid, X: x, Y: y}
}

func SetWindowDimensions(id model.WindowID, pid int, w, h uint32) Effect {
	return Effect{Kind: KindSetWindowDimensions, WindowID: id, PID: pid, W: w, H: h}
}

func SetWindowFrame(id model.WindowID, pid, x, y int, w, h uint32) Effect {
	return Effect{Kind: KindSetWindowFrame, WindowID: id, PID: pid, X: x, Y: y, W: w, H: h}
}

func ApplyFullscreen(id model.WindowID, pid int, displayFrame geom.Rect) Effect {
	return Effect{Kind: KindApplyFullscreen, WindowID: id, PID: pid, Frame: displayFrame}
}

func CloseWindow(id model.WindowID, pid int) Effect {
	return Effect{Kind: KindCloseWindow, WindowID: id, PID: pid}
}

func TerminateProcess(pid int) Effect {
	return Effect{Kind: KindTerminateProcess, PID: pid}
}

func WarpCursor(x, y int) Effect {
	return Effect{Kind: KindWarpCursor, X: x, Y: y}
}

func WarpCursorToDisplay(id model.DisplayID) Effect {
	return Effect{Kind: KindWarpCursorToDisplay, DisplayID: id}
}

func ExecCommand(cmdline string) Effect {
	return Effect{Kind: KindExecCommand, Cmdline: cmdline}
}

func ExecCommandTracked(cmdline string) Effect {
	return Effect{Kind: KindExecCommandTracked, Cmdline: cmdline}
}

func Retile() Effect {
	return Effect{Kind: KindRetile}
}

func RetileDisplays(ids []model.DisplayID) Effect {
	return Effect{Kind: KindRetileDisplays, DisplayIDs: ids}
}

// SendLayoutCommand sends cmd/args to displayID's layout engine. A nil
// layout means "use the display's current layout"; a non-nil one
// targets a specific named layout engine regardless of what's current.
func SendLayoutCommand(displayID model.DisplayID, layout *string, cmd string, args []string) Effect {
	return Effect{Kind: KindSendLayoutCommand, DisplayID: displayID, Layout: layout, LayoutCmd: cmd, LayoutArgs: args}
}

func UpdateLayoutExecPath(path string) Effect {
	return Effect{Kind: KindUpdateLayoutExecPath, ExecPath: path}
}

func FocusVisibleWindowIfNeeded(displayID model.DisplayID) Effect {
	return Effect{Kind: KindFocusVisibleWindowIfNeeded, DisplayID: displayID}
}
