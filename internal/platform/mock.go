package platform

import "github.com/kaedewm/yashiki/internal/geom"

// MockWindowSystem is an in-memory WindowSystem fake, grounded on
// original_source/yashiki/src/platform.rs's #[cfg(test)] mod mock and
// its builder style (With*/Add*/Remove*).
type MockWindowSystem struct {
	Windows       []WindowInfo
	Displays      []DisplayInfo
	FocusedID     *uint32
	ExtAttrsByID  map[uint32]ExtendedAttributes
}

func NewMockWindowSystem() *MockWindowSystem {
	return &MockWindowSystem{ExtAttrsByID: make(map[uint32]ExtendedAttributes)}
}

func (m *MockWindowSystem) WithWindows(w []WindowInfo) *MockWindowSystem {
	m.Windows = w
	return m
}

func (m *MockWindowSystem) WithDisplays(d []DisplayInfo) *MockWindowSystem {
	m.Displays = d
	return m
}

func (m *MockWindowSystem) WithFocused(id *uint32) *MockWindowSystem {
	m.FocusedID = id
	return m
}

func (m *MockWindowSystem) SetFocused(id *uint32) { m.FocusedID = id }

func (m *MockWindowSystem) AddWindow(info WindowInfo) {
	m.Windows = append(m.Windows, info)
}

func (m *MockWindowSystem) RemoveWindow(windowID uint32) {
	out := m.Windows[:0]
	for _, w := range m.Windows {
		if w.WindowID != windowID {
			out = append(out, w)
		}
	}
	m.Windows = out
}

func (m *MockWindowSystem) OnScreenWindows() []WindowInfo {
	out := make([]WindowInfo, len(m.Windows))
	copy(out, m.Windows)
	return out
}

func (m *MockWindowSystem) AllDisplays() []DisplayInfo {
	out := make([]DisplayInfo, len(m.Displays))
	copy(out, m.Displays)
	return out
}

func (m *MockWindowSystem) FocusedWindow() (FocusedWindowInfo, bool) {
	if m.FocusedID == nil {
		return FocusedWindowInfo{}, false
	}
	return FocusedWindowInfo{WindowID: *m.FocusedID}, true
}

func (m *MockWindowSystem) ExtendedAttributes(windowID uint32, pid int, layer int) ExtendedAttributes {
	return m.ExtAttrsByID[windowID]
}

// MockWindowManipulator records every call instead of touching real
// windows, letting tests assert the effect executor's side effects.
type MockWindowManipulator struct {
	AppliedMoves    [][]WindowMove
	Focused         []uint32
	Moved           [][3]int // id omitted; recorded via MovedIDs
	MovedIDs        []uint32
	Closed          []uint32
	Terminated      []int
	Warped          [][2]int
	Exec            []string
	ExecTracked     []string
	NextTrackedPID  int
	AppliedLayouts  []AppliedLayout
	FailNextFocus   bool
	FramedWindows   []FramedWindow
	LastFrame       [4]int // x, y, w, h of the most recent SetWindowFrame call
}

type AppliedLayout struct {
	DisplayID  uint32
	Geometries []WindowGeometry
}

func NewMockWindowManipulator() *MockWindowManipulator {
	return &MockWindowManipulator{NextTrackedPID: 1000}
}

func (m *MockWindowManipulator) ApplyWindowMoves(moves []WindowMove) error {
	m.AppliedMoves = append(m.AppliedMoves, moves)
	return nil
}

func (m *MockWindowManipulator) FocusWindow(id uint32, pid int) error {
	if m.FailNextFocus {
		m.FailNextFocus = false
		return errFocusFailed
	}
	m.Focused = append(m.Focused, id)
	return nil
}

func (m *MockWindowManipulator) MoveWindowToPosition(id uint32, pid int, x, y int) error {
	m.MovedIDs = append(m.MovedIDs, id)
	m.Moved = append(m.Moved, [3]int{x, y, pid})
	return nil
}

func (m *MockWindowManipulator) SetWindowDimensions(id uint32, pid int, w, h uint32) error {
	return nil
}

// FramedWindow pairs a SetWindowFrame call's target id with the frame
// it was given, in call order.
type FramedWindow struct {
	WindowID uint32
	X, Y     int
	W, H     uint32
}

func (m *MockWindowManipulator) SetWindowFrame(id uint32, pid int, x, y int, w, h uint32) error {
	m.FramedWindows = append(m.FramedWindows, FramedWindow{WindowID: id, X: x, Y: y, W: w, H: h})
	m.LastFrame = [4]int{x, y, int(w), int(h)}
	return nil
}

func (m *MockWindowManipulator) CloseWindow(id uint32, pid int) error {
	m.Closed = append(m.Closed, id)
	return nil
}

func (m *MockWindowManipulator) TerminateProcess(pid int) error {
	m.Terminated = append(m.Terminated, pid)
	return nil
}

func (m *MockWindowManipulator) WarpCursor(x, y int) error {
	m.Warped = append(m.Warped, [2]int{x, y})
	return nil
}

func (m *MockWindowManipulator) ExecCommand(cmdline string, pathEnv string) error {
	m.Exec = append(m.Exec, cmdline)
	return nil
}

func (m *MockWindowManipulator) ExecCommandTracked(cmdline string, pathEnv string) (int, error) {
	m.ExecTracked = append(m.ExecTracked, cmdline)
	pid := m.NextTrackedPID
	m.NextTrackedPID++
	return pid, nil
}

func (m *MockWindowManipulator) ApplyLayout(displayID uint32, frame geom.Rect, geometries []WindowGeometry) error {
	m.AppliedLayouts = append(m.AppliedLayouts, AppliedLayout{DisplayID: displayID, Geometries: geometries})
	return nil
}

var errFocusFailed = &mockError{"mock: focus failed"}

type mockError struct{ msg string }

func (e *mockError) Error() string { return e.msg }
