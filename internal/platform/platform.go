// Package platform defines the two capability interfaces the core uses
// to observe and mutate the window system (spec §6.1). The platform
// driver itself (accessibility APIs, CGEventTap, Cocoa calls) is out of
// scope; this package only defines the boundary and, in mock.go, an
// in-memory fake used throughout the test suite.
package platform

import "github.com/kaedewm/yashiki/internal/geom"

// WindowInfo is a raw, unclassified on-screen window as reported by
// the platform.
type WindowInfo struct {
	WindowID  uint32
	PID       int
	Name      string
	OwnerName string
	BundleID  string
	Bounds    geom.Bounds
	Layer     int
}

// DisplayInfo is a raw display as reported by the platform.
type DisplayInfo struct {
	ID     uint32
	Name   string
	Frame  geom.Bounds
	IsMain bool
}

// FocusedWindowInfo identifies the platform's current focus.
type FocusedWindowInfo struct {
	WindowID uint32
}

// ExtendedAttributes mirrors model.ExtendedAttributes at the platform
// boundary (kept separate to avoid a platform->model import cycle
// concern, even though the fields are identical).
type ExtendedAttributes struct {
	AXID             string
	Subrole          string
	WindowLevel      int
	CloseButton      int
	FullscreenButton int
	MinimizeButton   int
	ZoomButton       int
}

// WindowSystem queries window and display information from the
// platform. Implementations must be safe to call from the core
// goroutine only (no internal synchronization is required or assumed).
type WindowSystem interface {
	OnScreenWindows() []WindowInfo
	AllDisplays() []DisplayInfo
	FocusedWindow() (FocusedWindowInfo, bool)
	ExtendedAttributes(windowID uint32, pid int, layer int) ExtendedAttributes
}

// WindowMove describes a single window relocation, carrying both old
// and new coordinates so the executor can detect no-ops.
type WindowMove struct {
	WindowID         uint32
	PID              int
	OldX, OldY       int
	NewX, NewY       int
}

// WindowGeometry is a layout engine's placement for one window.
type WindowGeometry struct {
	ID                  uint32
	X, Y                int
	Width, Height       uint32
}

// WindowManipulator performs side effects against the window system.
type WindowManipulator interface {
	ApplyWindowMoves(moves []WindowMove) error
	FocusWindow(id uint32, pid int) error
	MoveWindowToPosition(id uint32, pid int, x, y int) error
	SetWindowDimensions(id uint32, pid int, w, h uint32) error
	SetWindowFrame(id uint32, pid int, x, y int, w, h uint32) error
	CloseWindow(id uint32, pid int) error
	TerminateProcess(pid int) error
	WarpCursor(x, y int) error
	ExecCommand(cmdline string, pathEnv string) error
	ExecCommandTracked(cmdline string, pathEnv string) (pid int, err error)
	ApplyLayout(displayID uint32, frame geom.Rect, geometries []WindowGeometry) error
}
