// Package layoutengine spawns and talks to external layout-engine
// subprocesses over a line-delimited JSON protocol on stdin/stdout
// (spec §7). yashikid never computes tiling geometry itself; every
// layout decision is delegated to one of these child processes.
package layoutengine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/wire"
)

// Kind discriminates the tagged-union LayoutMessage/LayoutResult.
type Kind string

const (
	KindLayout  Kind = "layout"
	KindCommand Kind = "command"
	KindOk      Kind = "ok"
	KindRetile  Kind = "needs_retile"
	KindError   Kind = "error"
)

// WindowGeometry is one window's placement, as returned by a layout
// engine's "layout" reply.
type WindowGeometry struct {
	ID     uint32 `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Message is sent from yashikid to a layout engine.
type Message struct {
	Type Kind `json:"type"`

	Width   uint32   `json:"width,omitempty"`
	Height  uint32   `json:"height,omitempty"`
	Windows []uint32 `json:"windows,omitempty"`

	Cmd  string   `json:"cmd,omitempty"`
	Args []string `json:"args,omitempty"`
}

// LayoutRequest builds a "layout" message requesting geometry for the
// given stacking-order window ids within a width x height area.
func LayoutRequest(width, height uint32, windows []uint32) Message {
	return Message{Type: KindLayout, Width: width, Height: height, Windows: windows}
}

// CommandRequest builds a "command" message.
func CommandRequest(cmd string, args []string) Message {
	return Message{Type: KindCommand, Cmd: cmd, Args: args}
}

// Result is a layout engine's reply to yashikid.
type Result struct {
	Type    Kind             `json:"type"`
	Windows []WindowGeometry `json:"windows,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Engine wraps one running layout-engine subprocess.
type Engine struct {
	cmd    *exec.Cmd
	reader *wire.Reader
	writer *wire.Writer
}

// findLayoutEngine searches, in order: a "layouts" resource directory
// next to the current executable (an app-bundle-style layout) and the
// same directory as the current executable (development). It returns
// "" when neither holds the engine; Spawn then searches execPath.
func findLayoutEngine(name string) string {
	binName := "yashiki-layout-" + name
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	exeDir := filepath.Dir(exePath)

	bundleCandidate := filepath.Join(filepath.Dir(exeDir), "Resources", "layouts", binName)
	if info, err := os.Stat(bundleCandidate); err == nil && !info.IsDir() {
		diag.Debugf("found layout engine in bundle: %s", bundleCandidate)
		return bundleCandidate
	}

	devCandidate := filepath.Join(exeDir, binName)
	if info, err := os.Stat(devCandidate); err == nil && !info.IsDir() {
		diag.Debugf("found layout engine in executable dir: %s", devCandidate)
		return devCandidate
	}

	return ""
}

// Spawn starts the layout engine named name, searching the bundle and
// executable-adjacent locations before falling back to execPath (a
// PATH-style colon-separated search string; empty means "inherit the
// daemon's own PATH").
func Spawn(name, execPath string) (*Engine, error) {
	binName := "yashiki-layout-" + name
	var cmd *exec.Cmd
	if path := findLayoutEngine(name); path != "" {
		cmd = exec.Command(path)
	} else {
		path := binName
		for _, dir := range filepath.SplitList(execPath) {
			candidate := filepath.Join(dir, binName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				path = candidate
				break
			}
		}
		cmd = exec.Command(path)
		if execPath != "" {
			cmd.Env = append(os.Environ(), "PATH="+execPath)
		}
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("layoutengine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("layoutengine: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("layoutengine: spawn %s: %w", binName, err)
	}
	diag.Infof("layout engine %q spawned (pid %d)", binName, cmd.Process.Pid)

	return &Engine{
		cmd:    cmd,
		reader: wire.NewReader(stdout),
		writer: wire.NewWriter(stdin),
	}, nil
}

func (e *Engine) send(msg Message) (Result, error) {
	if err := e.writer.Encode(msg); err != nil {
		return Result{}, fmt.Errorf("layoutengine: write: %w", err)
	}
	var result Result
	if err := e.reader.Decode(&result); err != nil {
		return Result{}, fmt.Errorf("layoutengine: read: %w", err)
	}
	return result, nil
}

// RequestLayout asks the engine to place windowIDs (in stacking order)
// within a width x height area.
func (e *Engine) RequestLayout(width, height uint32, windowIDs []uint32) ([]WindowGeometry, error) {
	result, err := e.send(LayoutRequest(width, height, windowIDs))
	if err != nil {
		return nil, err
	}
	switch result.Type {
	case KindLayout:
		return result.Windows, nil
	case KindError:
		return nil, fmt.Errorf("layout engine error: %s", result.Message)
	default:
		return nil, fmt.Errorf("layoutengine: unexpected %q response to a layout request", result.Type)
	}
}

// SendCommand sends a named command with args. Returns whether the
// engine requested a retile.
func (e *Engine) SendCommand(cmd string, args []string) (needsRetile bool, err error) {
	result, err := e.send(CommandRequest(cmd, args))
	if err != nil {
		return false, err
	}
	switch result.Type {
	case KindOk:
		return false, nil
	case KindRetile:
		return true, nil
	case KindError:
		return false, fmt.Errorf("layout engine error: %s", result.Message)
	default:
		return false, fmt.Errorf("layoutengine: unexpected %q response to a command", result.Type)
	}
}

// Close terminates the engine process.
func (e *Engine) Close() error {
	if e.cmd.Process == nil {
		return nil
	}
	return e.cmd.Process.Kill()
}

// Manager lazily spawns and caches one Engine per layout name.
type Manager struct {
	execPath string
	engines  map[string]*Engine
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{engines: make(map[string]*Engine)}
}

// SetExecPath updates the PATH-style search string used for engines
// spawned from now on; already-running engines are unaffected.
func (m *Manager) SetExecPath(execPath string) {
	m.execPath = execPath
}

// getOrSpawn returns the cached engine for name, spawning and caching
// one if it isn't already running.
func (m *Manager) getOrSpawn(name string) (*Engine, error) {
	if e, ok := m.engines[name]; ok {
		return e, nil
	}
	e, err := Spawn(name, m.execPath)
	if err != nil {
		return nil, err
	}
	m.engines[name] = e
	return e, nil
}

// RequestLayout requests a layout from the named engine, spawning it
// lazily. A broken pipe drops the cached engine so the next call
// re-spawns it.
func (m *Manager) RequestLayout(name string, width, height uint32, windowIDs []uint32) ([]WindowGeometry, error) {
	e, err := m.getOrSpawn(name)
	if err != nil {
		return nil, err
	}
	geometries, err := e.RequestLayout(width, height, windowIDs)
	if err != nil {
		delete(m.engines, name)
	}
	return geometries, err
}

// SendCommand sends a command to the named engine, spawning it lazily.
func (m *Manager) SendCommand(name, cmd string, args []string) (bool, error) {
	e, err := m.getOrSpawn(name)
	if err != nil {
		return false, err
	}
	needsRetile, err := e.SendCommand(cmd, args)
	if err != nil {
		delete(m.engines, name)
	}
	return needsRetile, err
}

// Close terminates every running engine.
func (m *Manager) Close() {
	for name, e := range m.engines {
		if err := e.Close(); err != nil {
			diag.Warnf("closing layout engine %q: %v", name, err)
		}
	}
	m.engines = make(map[string]*Engine)
}
