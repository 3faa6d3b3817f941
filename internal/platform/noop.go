package platform

import (
	"os/exec"

	"github.com/kaedewm/yashiki/internal/geom"
)

// NoopWindowSystem reports no windows and no displays. The real
// window-system driver (accessibility APIs, CGWindowList, NSScreen)
// is out of scope for this tree (spec.md §1 names it a capability
// interface, not a component to implement); this stands in so
// cmd/yashikid can start, serve IPC, and exercise the layout-engine
// protocol without a platform backend attached.
type NoopWindowSystem struct{}

func (NoopWindowSystem) OnScreenWindows() []WindowInfo            { return nil }
func (NoopWindowSystem) AllDisplays() []DisplayInfo               { return nil }
func (NoopWindowSystem) FocusedWindow() (FocusedWindowInfo, bool) { return FocusedWindowInfo{}, false }
func (NoopWindowSystem) ExtendedAttributes(uint32, int, int) ExtendedAttributes {
	return ExtendedAttributes{}
}

// NoopWindowManipulator performs the one mutation that has no
// platform dependency — spawning a process, via os/exec — for real,
// and treats every window/cursor mutation as a silent no-op that
// returns nil rather than failing, so commands that would otherwise move/focus/resize a
// window still return success against an empty window set.
type NoopWindowManipulator struct{}

func (NoopWindowManipulator) ApplyWindowMoves([]WindowMove) error                  { return nil }
func (NoopWindowManipulator) FocusWindow(uint32, int) error                        { return nil }
func (NoopWindowManipulator) MoveWindowToPosition(uint32, int, int, int) error     { return nil }
func (NoopWindowManipulator) SetWindowDimensions(uint32, int, uint32, uint32) error { return nil }
func (NoopWindowManipulator) SetWindowFrame(uint32, int, int, int, uint32, uint32) error {
	return nil
}
func (NoopWindowManipulator) CloseWindow(uint32, int) error { return nil }
func (NoopWindowManipulator) TerminateProcess(int) error    { return nil }
func (NoopWindowManipulator) WarpCursor(int, int) error     { return nil }

func (NoopWindowManipulator) ExecCommand(cmdline string, pathEnv string) error {
	cmd := buildExecCommand(cmdline, pathEnv)
	return cmd.Start()
}

func (NoopWindowManipulator) ExecCommandTracked(cmdline string, pathEnv string) (int, error) {
	cmd := buildExecCommand(cmdline, pathEnv)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}

func (NoopWindowManipulator) ApplyLayout(uint32, geom.Rect, []WindowGeometry) error { return nil }

func buildExecCommand(cmdline string, pathEnv string) *exec.Cmd {
	cmd := exec.Command("/bin/sh", "-c", cmdline)
	if pathEnv != "" {
		cmd.Env = append(cmd.Env, "PATH="+pathEnv)
	}
	return cmd
}
