// Package runloop serializes every external input (IPC commands,
// hotkey firings, mouse position, window-observer notices,
// display-reconfiguration notices, and workspace notices) into a
// single goroutine's select loop, so internal/state is never touched
// from two goroutines at once (spec §3, §9: "single-threaded core,
// platform callbacks via channels"). Anything that wants to read or
// mutate State — the IPC servers, the platform's event-tap driver —
// posts a request on one of Loop's channels and, where a reply is
// needed, blocks on a per-request reply channel.
package runloop

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/kaedewm/yashiki/internal/command"
	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/effect"
	"github.com/kaedewm/yashiki/internal/event"
	"github.com/kaedewm/yashiki/internal/hotkey"
	"github.com/kaedewm/yashiki/internal/layoutengine"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
	syncpkg "github.com/kaedewm/yashiki/internal/sync"
)

// EventSink receives the StateEvent stream the loop derives from each
// processed input. internal/ipc's event server implements this.
type EventSink interface {
	Publish(event.StateEvent)
}

// nopSink discards events; used until a real sink is attached, so the
// loop never has to nil-check.
type nopSink struct{}

func (nopSink) Publish(event.StateEvent) {}

// MousePosition is a single throttled cursor sample from the
// platform's mouse event tap.
type MousePosition struct {
	X, Y int
}

// WindowObserverEvent reports that the platform's per-process window
// observer saw something change (created/destroyed/moved/retitled)
// for a pid; the loop re-syncs just that pid rather than the world.
type WindowObserverEvent struct {
	PID int
}

// WorkspaceEvent reports an app-activation/termination notice from
// the platform's workspace notification center.
type WorkspaceEvent struct {
	PID int
}

type cmdRequest struct {
	cmd   command.Command
	reply chan command.Response
}

type hotkeyRequest struct {
	hk hotkey.Hotkey
}

type snapshotRequest struct {
	reply chan event.StateEvent
}

// Loop owns the single in-memory State and everything that mutates
// it: the hotkey table, the layout-engine manager, and the effect
// executor. Every method that touches those must run on the Run()
// goroutine; external callers only ever use the Post*/Handle* methods
// below, which hand a request across a channel and (where applicable)
// wait for the loop to process it.
type Loop struct {
	State        *state.State
	Hotkeys      *hotkey.Store
	Layouts      *layoutengine.Manager
	Executor     *effect.Executor
	WindowSystem platform.WindowSystem
	Sink         EventSink

	// AutoRaiseEnabled/AutoRaiseDelay govern the supplemented
	// focus-follows-mouse behavior derived from the mouse position
	// stream (see handleMouse's doc comment).
	AutoRaiseEnabled bool
	AutoRaiseDelay   time.Duration

	commands  chan cmdRequest
	hotkeys   chan hotkeyRequest
	mouse     chan MousePosition
	displays  chan struct{}
	windows   chan WindowObserverEvent
	workspace chan WorkspaceEvent
	snapshots chan snapshotRequest
	stop      chan struct{}
	done      chan struct{}

	hoverWindow *model.WindowID
	hoverSince  time.Time
	hoverRaised bool
}

// New constructs a Loop ready to run. ws and the executor's manipulator
// should be the same platform driver instance.
func New(s *state.State, store *hotkey.Store, layouts *layoutengine.Manager, ex *effect.Executor, ws platform.WindowSystem) *Loop {
	return &Loop{
		State:            s,
		Hotkeys:          store,
		Layouts:          layouts,
		Executor:         ex,
		WindowSystem:     ws,
		Sink:             nopSink{},
		AutoRaiseEnabled: true,
		AutoRaiseDelay:   400 * time.Millisecond,

		commands:  make(chan cmdRequest),
		hotkeys:   make(chan hotkeyRequest),
		mouse:     make(chan MousePosition, 32),
		displays:  make(chan struct{}, 1),
		windows:   make(chan WindowObserverEvent, 32),
		workspace: make(chan WorkspaceEvent, 32),
		snapshots: make(chan snapshotRequest),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Bootstrap performs the daemon's first sync against the platform and
// marks rule classification as initialized, so windows discovered from
// here on are reclassified live (command.KindApplyRules semantics;
// spec's supplemented RuleAdd timing behavior). Call once before Run,
// or after Run has started via PostCommand(ApplyRules) — either is
// safe, but Bootstrap runs inline and is simplest at startup.
func (l *Loop) Bootstrap() {
	res, displayMoves := syncpkg.SyncAll(l.State, l.WindowSystem)
	l.Executor.Apply([]effect.Effect{effect.ApplyWindowMoves(displayMoves)})
	l.Executor.Apply([]effect.Effect{effect.ApplyWindowMoves(res.RehideMoves)})
	if res.Changed || len(displayMoves) > 0 {
		l.Executor.Apply([]effect.Effect{effect.Retile()})
	}
	_, effects := command.Process(l.State, l.Hotkeys, command.Command{Type: command.KindApplyRules}, nil)
	l.Executor.Apply(effects)
}

// Run drains every input channel until Stop is called, dispatching
// each to its handler in the order received. This is the only
// goroutine allowed to read or write l.State.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case req := <-l.commands:
			req.reply <- l.dispatchCommand(req.cmd)

		case req := <-l.hotkeys:
			l.dispatchHotkey(req.hk)

		case pos := <-l.mouse:
			l.handleMouse(pos)

		case <-l.displays:
			l.handleDisplayChange()

		case we := <-l.windows:
			l.handleWindowEvent(we)

		case we := <-l.workspace:
			l.handleWorkspaceEvent(we)

		case req := <-l.snapshots:
			req.reply <- l.buildSnapshot()

		case <-l.stop:
			return
		}
	}
}

// Stop asks Run to return and blocks until it has.
func (l *Loop) Stop() {
	close(l.stop)
	<-l.done
}

// PostCommand hands cmd to the loop and blocks for its Response. This
// is the entry point internal/ipc's command server uses for every
// request it accepts.
func (l *Loop) PostCommand(cmd command.Command) command.Response {
	reply := make(chan command.Response, 1)
	l.commands <- cmdRequest{cmd: cmd, reply: reply}
	return <-reply
}

// PostHotkey tells the loop a hotkey fired; if it's bound, the bound
// command is decoded and processed exactly like an IPC command, except
// its response (if any) is discarded — hotkeys have no caller to answer.
func (l *Loop) PostHotkey(hk hotkey.Hotkey) {
	l.hotkeys <- hotkeyRequest{hk: hk}
}

// PostMousePosition feeds a throttled cursor sample from the platform's
// mouse event tap. The channel is buffered and the send never blocks
// the tap's own thread; if the loop falls behind and the buffer is
// full, the new sample is dropped and the buffered ones are kept.
func (l *Loop) PostMousePosition(x, y int) {
	select {
	case l.mouse <- MousePosition{X: x, Y: y}:
	default:
		diag.Debugf("runloop: dropped mouse sample, channel full")
	}
}

// PostDisplayChange signals that the platform's display configuration
// changed (a monitor connected, disconnected, or was resized). The
// notification itself carries no payload; the handler re-queries
// WindowSystem.AllDisplays() when it runs.
func (l *Loop) PostDisplayChange() {
	select {
	case l.displays <- struct{}{}:
	default:
	}
}

// PostWindowEvent signals that the platform's per-process window
// observer saw a change scoped to pid.
func (l *Loop) PostWindowEvent(pid int) {
	l.windows <- WindowObserverEvent{PID: pid}
}

// PostWorkspaceEvent signals an app activation/termination notice.
func (l *Loop) PostWorkspaceEvent(pid int) {
	l.workspace <- WorkspaceEvent{PID: pid}
}

// Snapshot returns the current state as a single StateEvent, the same
// shape a new event-socket subscriber receives when it asks for one.
// Goes through the loop's own goroutine like everything else so it
// never races a concurrent mutation.
func (l *Loop) Snapshot() event.StateEvent {
	reply := make(chan event.StateEvent, 1)
	l.snapshots <- snapshotRequest{reply: reply}
	return <-reply
}

// dispatchCommand is the command-processing path shared by IPC
// requests and (via PostHotkey) fired hotkeys: snapshot State,
// process, apply effects, diff, publish.
func (l *Loop) dispatchCommand(cmd command.Command) command.Response {
	pre := l.buildPreState()
	var onScreen []platform.WindowInfo
	if cmd.Type == command.KindListWindows && cmd.All {
		onScreen = l.WindowSystem.OnScreenWindows()
	}
	resp, effects := command.Process(l.State, l.Hotkeys, cmd, onScreen)
	l.Executor.Apply(effects)
	l.publishDiff(pre)
	return resp
}

func (l *Loop) dispatchHotkey(hk hotkey.Hotkey) {
	raw, ok := l.Hotkeys.Lookup(hk)
	if !ok {
		diag.Debugf("runloop: no binding for %s", hk)
		return
	}
	var cmd command.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		diag.Warnf("runloop: binding for %s decodes to invalid command: %v", hk, err)
		return
	}
	l.dispatchCommand(cmd)
}

// handleMouse implements a best-effort focus-follows-mouse: a window
// hovered continuously for AutoRaiseDelay is focused, mirroring the
// hover-dwell auto-raise behavior of the platform's mouse tracker. It
// does not warp the cursor itself or override an explicit WindowFocus
// command; it only issues a FocusWindow effect, so CursorWarp and the
// layout-engine notify apply through the normal executor path (in
// on_focus_change mode that effect does warp the cursor).
func (l *Loop) handleMouse(pos MousePosition) {
	if !l.AutoRaiseEnabled {
		return
	}
	w, ok := l.windowUnderPoint(pos.X, pos.Y)
	if !ok {
		l.hoverWindow = nil
		l.hoverRaised = false
		return
	}
	if l.hoverWindow != nil && *l.hoverWindow == w.ID {
		if !l.hoverRaised && time.Since(l.hoverSince) >= l.AutoRaiseDelay {
			l.hoverRaised = true
			if l.State.Focused != nil && *l.State.Focused == w.ID {
				return
			}
			pre := l.buildPreState()
			l.Executor.Apply([]effect.Effect{effect.FocusWindow(w.ID, w.PID)})
			l.publishDiff(pre)
		}
		return
	}
	id := w.ID
	l.hoverWindow = &id
	l.hoverSince = time.Now()
	l.hoverRaised = false
}

// windowUnderPoint returns the topmost visible, non-hidden window
// whose frame contains (x, y). With no z-order tracked for floating
// windows, area is used as a topmost proxy (smaller windows are
// usually the ones stacked above larger ones), tie-broken by the
// highest window id (most recently created).
func (l *Loop) windowUnderPoint(x, y int) (*model.Window, bool) {
	var best *model.Window
	for _, w := range l.State.Windows {
		if w.IsHidden() {
			continue
		}
		d, ok := l.State.Display(w.DisplayID)
		if !ok || !w.Tags.Intersects(d.VisibleTags) {
			continue
		}
		if !w.Frame.Contains(x, y) {
			continue
		}
		if best == nil || betterHoverCandidate(w, best) {
			best = w
		}
	}
	return best, best != nil
}

func betterHoverCandidate(w, best *model.Window) bool {
	wArea := w.Frame.Width * w.Frame.Height
	bestArea := best.Frame.Width * best.Frame.Height
	if wArea != bestArea {
		return wArea < bestArea
	}
	return w.ID > best.ID
}

// handleDisplayChange re-syncs the display topology, migrating or
// orphaning windows as needed, then retiles every affected display.
func (l *Loop) handleDisplayChange() {
	pre := l.buildPreState()
	moves := l.State.HandleDisplayChange(l.WindowSystem.AllDisplays())
	l.Executor.Apply([]effect.Effect{effect.ApplyWindowMoves(moves), effect.Retile()})
	l.publishDiff(pre)
}

// handleWindowEvent re-syncs one pid's windows against the platform
// and refreshes State.Focused if the platform's reported focus moved
// within that scope.
func (l *Loop) handleWindowEvent(we WindowObserverEvent) {
	pre := l.buildPreState()
	res := syncpkg.SyncPID(l.State, l.WindowSystem, we.PID)
	syncpkg.SyncFocusedWindow(l.State, l.WindowSystem, &we.PID)
	l.Executor.Apply([]effect.Effect{effect.ApplyWindowMoves(res.RehideMoves)})
	if res.Changed {
		l.Executor.Apply([]effect.Effect{effect.Retile()})
	}
	l.publishDiff(pre)
}

// handleWorkspaceEvent treats an app activation/termination notice the
// same as a window-observer event scoped to that pid: workspace
// notices arrive before accessibility has necessarily indexed the new
// process' windows, so the sync pass is what actually discovers them.
func (l *Loop) handleWorkspaceEvent(we WorkspaceEvent) {
	l.handleWindowEvent(WindowObserverEvent(we))
}

// publishDiff derives and publishes the StateEvent stream implied by
// moving from pre to the loop's current State.
func (l *Loop) publishDiff(pre event.PreState) {
	post := l.buildPostState()
	for _, ev := range event.Diff(pre, post) {
		l.Sink.Publish(ev)
	}
}

func (l *Loop) buildPreState() event.PreState {
	windows := make(map[uint32]event.WindowProperties, len(l.State.Windows))
	for id, w := range l.State.Windows {
		windows[uint32(id)] = windowProperties(w)
	}
	displays := make(map[uint32]event.DisplaySnapshot, len(l.State.Displays))
	for id, d := range l.State.Displays {
		displays[uint32(id)] = displaySnapshot(d)
	}
	var focused *uint32
	if l.State.Focused != nil {
		v := uint32(*l.State.Focused)
		focused = &v
	}
	return event.PreState{
		Windows:        windows,
		Displays:       displays,
		Focused:        focused,
		FocusedDisplay: uint32(l.State.FocusedDisplay),
	}
}

func (l *Loop) buildPostState() event.PostState {
	windows := make(map[uint32]event.WindowSnapshot, len(l.State.Windows))
	for id, w := range l.State.Windows {
		windows[uint32(id)] = event.WindowSnapshot{
			Info:       windowToEventInfo(l.State, w),
			Properties: windowProperties(w),
		}
	}
	displays := make(map[uint32]event.DisplaySnapshot, len(l.State.Displays))
	for id, d := range l.State.Displays {
		displays[uint32(id)] = displaySnapshot(d)
	}
	var focused *uint32
	if l.State.Focused != nil {
		v := uint32(*l.State.Focused)
		focused = &v
	}
	return event.PostState{
		Windows:        windows,
		Displays:       displays,
		Focused:        focused,
		FocusedDisplay: uint32(l.State.FocusedDisplay),
	}
}

func (l *Loop) buildSnapshot() event.StateEvent {
	ids := make([]model.WindowID, 0, len(l.State.Windows))
	for id := range l.State.Windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	windows := make([]event.WindowInfo, 0, len(ids))
	for _, id := range ids {
		windows = append(windows, windowToEventInfo(l.State, l.State.Windows[id]))
	}

	dids := l.State.DisplayIDs()
	sort.Slice(dids, func(i, j int) bool { return dids[i] < dids[j] })
	displays := make([]event.DisplayInfo, 0, len(dids))
	for _, id := range dids {
		d, _ := l.State.Display(id)
		displays = append(displays, event.DisplayInfo{
			ID:          uint32(d.ID),
			Name:        d.Name,
			X:           d.Frame.X,
			Y:           d.Frame.Y,
			Width:       uint32(d.Frame.Width),
			Height:      uint32(d.Frame.Height),
			IsMain:      d.IsMain,
			VisibleTags: d.VisibleTags.Mask(),
			IsFocused:   id == l.State.FocusedDisplay,
		})
	}

	var focused *uint32
	if l.State.Focused != nil {
		v := uint32(*l.State.Focused)
		focused = &v
	}
	return event.Snapshot(windows, displays, focused, uint32(l.State.FocusedDisplay), l.State.DefaultLayout)
}

func windowProperties(w *model.Window) event.WindowProperties {
	return event.WindowProperties{
		Tags:         w.Tags.Mask(),
		DisplayID:    uint32(w.DisplayID),
		IsFloating:   w.IsFloating,
		IsFullscreen: w.IsFullscreen,
	}
}

func displaySnapshot(d *model.Display) event.DisplaySnapshot {
	return event.DisplaySnapshot{
		VisibleTags:   d.VisibleTags.Mask(),
		CurrentLayout: d.CurrentLayout,
	}
}

func windowToEventInfo(s *state.State, w *model.Window) event.WindowInfo {
	wi := event.WindowInfo{
		ID:           uint32(w.ID),
		PID:          w.PID,
		Title:        w.Title,
		AppName:      w.AppName,
		Tags:         w.Tags.Mask(),
		X:            w.Frame.X,
		Y:            w.Frame.Y,
		Width:        uint32(w.Frame.Width),
		Height:       uint32(w.Frame.Height),
		IsFocused:    s.Focused != nil && *s.Focused == w.ID,
		IsFloating:   w.IsFloating,
		IsFullscreen: w.IsFullscreen,
		OutputID:     uint32(w.DisplayID),
	}
	if w.AppID != "" {
		id := w.AppID
		wi.AppID = &id
	}
	return wi
}
