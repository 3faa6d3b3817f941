// Package sync reconciles a platform snapshot against internal/state's
// State: it discovers new windows, drops ones the platform no longer
// reports, refreshes drifted titles/frames, and detects windows the OS
// has forcibly relocated off their hide position (spec §4.4). It never
// talks to the platform's mutating half (platform.WindowManipulator) —
// only platform.WindowSystem, a read-only view — and produces window
// moves for the caller to apply, the same effects-as-data discipline
// internal/command and internal/effect follow elsewhere in the tree.
package sync

import (
	"sort"

	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/geom"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/state"
)

// excludedBundleIDs are system UIs filtered before rule classification
// even runs: transient, never user-managed, and numerous enough to
// slow down every sync pass if let through.
var excludedBundleIDs = map[string]bool{
	"com.apple.controlcenter": true,
}

// Result reports what a sync pass discovered.
type Result struct {
	Changed     bool
	NewWindowIDs []model.WindowID
	RehideMoves []platform.WindowMove
}

// findDisplayForBounds returns the display whose frame contains
// bounds' centre point, falling back to the focused display, then the
// lowest-id known display, then 0 if none exist.
func findDisplayForBounds(s *state.State, bounds geom.Rect) model.DisplayID {
	cx, cy := bounds.Center()
	ids := s.DisplayIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		d, _ := s.Display(id)
		if d.Frame.Contains(cx, cy) {
			return id
		}
	}
	if _, ok := s.Display(s.FocusedDisplay); ok {
		return s.FocusedDisplay
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return 0
}

// extendedAttributesToModel converts the platform-boundary extended
// attributes into the model's copy (identical field layout; see
// platform.ExtendedAttributes' doc comment for why they're kept
// separate types).
func extendedAttributesToModel(ext platform.ExtendedAttributes) model.ExtendedAttributes {
	return model.ExtendedAttributes{
		AXID:             ext.AXID,
		Subrole:          ext.Subrole,
		WindowLevel:      ext.WindowLevel,
		CloseButton:      model.ButtonState(ext.CloseButton),
		FullscreenButton: model.ButtonState(ext.FullscreenButton),
		MinimizeButton:   model.ButtonState(ext.MinimizeButton),
		ZoomButton:       model.ButtonState(ext.ZoomButton),
	}
}

// tryCreateWindow classifies a freshly-discovered on-screen window,
// returning (nil, false) if it should not be managed at all (spec
// §4.4 step 2's three exclusion checks, in order).
func tryCreateWindow(s *state.State, ws platform.WindowSystem, info platform.WindowInfo, displayID model.DisplayID) (*model.Window, bool) {
	if excludedBundleIDs[info.BundleID] {
		return nil, false
	}

	ext := ws.ExtendedAttributes(info.WindowID, info.PID, info.Layer)
	modelExt := extendedAttributesToModel(ext)

	if ext.WindowLevel != 0 && !s.Rules.HasMatchingNonIgnoreRule(info.OwnerName, info.BundleID, info.Name, modelExt) {
		diag.Debugf("sync: window %d skipped (level %d, no matching rule)", info.WindowID, ext.WindowLevel)
		return nil, false
	}
	if s.Rules.ShouldIgnore(info.OwnerName, info.BundleID, info.Name, modelExt) {
		diag.Debugf("sync: window %d ignored by rule", info.WindowID)
		return nil, false
	}

	initialTag := s.DefaultTag
	if d, ok := s.Display(displayID); ok {
		initialTag = d.VisibleTags
	}

	w := &model.Window{
		ID:        model.WindowID(info.WindowID),
		PID:       info.PID,
		AppName:   info.OwnerName,
		AppID:     info.BundleID,
		Title:     info.Name,
		Ext:       modelExt,
		Tags:      initialTag,
		DisplayID: displayID,
		Frame:     geom.FromBounds(info.Bounds),
	}
	diag.Infof("sync: window added [%d] %s (%s) on display %d", w.ID, w.Title, w.AppName, displayID)
	return w, true
}

// syncWindowInfos is the shared core of SyncAll/SyncPID: infos is
// already filtered to the PID scope (or unfiltered for SyncAll).
func syncWindowInfos(s *state.State, ws platform.WindowSystem, infos []platform.WindowInfo, scopePID *int) Result {
	current := make(map[model.WindowID]bool)
	for _, w := range s.Windows {
		if scopePID == nil || w.PID == *scopePID {
			current[w.ID] = true
		}
	}
	incoming := make(map[model.WindowID]platform.WindowInfo, len(infos))
	for _, info := range infos {
		incoming[model.WindowID(info.WindowID)] = info
	}

	var res Result

	var removed []model.WindowID
	for id := range current {
		if _, ok := incoming[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	for _, id := range removed {
		if w, ok := s.Window(id); ok {
			diag.Infof("sync: window removed [%d] %s (%s)", w.ID, w.Title, w.AppName)
		}
		s.RemoveWindow(id)
		res.Changed = true
	}

	var addedIDs []model.WindowID
	for id := range incoming {
		if !current[id] {
			addedIDs = append(addedIDs, id)
		}
	}
	sort.Slice(addedIDs, func(i, j int) bool { return addedIDs[i] < addedIDs[j] })
	for _, id := range addedIDs {
		info := incoming[id]
		displayID := findDisplayForBounds(s, geom.FromBounds(info.Bounds))
		w, ok := tryCreateWindow(s, ws, info, displayID)
		if !ok {
			continue
		}
		moves := s.AddWindow(w)
		res.RehideMoves = append(res.RehideMoves, moves...)
		res.NewWindowIDs = append(res.NewWindowIDs, w.ID)
		res.Changed = true
	}

	var existingIDs []model.WindowID
	for id := range current {
		if _, ok := incoming[id]; ok {
			existingIDs = append(existingIDs, id)
		}
	}
	sort.Slice(existingIDs, func(i, j int) bool { return existingIDs[i] < existingIDs[j] })
	for _, id := range existingIDs {
		info := incoming[id]
		w, ok := s.Window(id)
		if !ok {
			continue
		}
		newFrame := geom.FromBounds(info.Bounds)
		newDisplayID := findDisplayForBounds(s, newFrame)
		titleChanged := w.Title != info.Name
		frameChanged := w.Frame != newFrame
		if !titleChanged && !frameChanged {
			continue
		}
		w.Title = info.Name
		if w.IsHidden() {
			hideX, hideY := s.ExpectedHidePosition(w.DisplayID, w.Frame.Width, w.Frame.Height)
			if newFrame.X != hideX || newFrame.Y != hideY {
				res.RehideMoves = append(res.RehideMoves, platform.WindowMove{
					WindowID: uint32(w.ID), PID: w.PID,
					OldX: newFrame.X, OldY: newFrame.Y,
					NewX: hideX, NewY: hideY,
				})
			}
		} else {
			w.Frame = newFrame
			if newDisplayID != w.DisplayID {
				s.MoveWindowDisplay(w, newDisplayID)
			}
		}
	}

	return res
}

// SyncPID reconciles only the windows owned by pid against the
// platform's current on-screen list.
func SyncPID(s *state.State, ws platform.WindowSystem, pid int) Result {
	infos := ws.OnScreenWindows()
	var pidInfos []platform.WindowInfo
	for _, info := range infos {
		if info.PID == pid {
			pidInfos = append(pidInfos, info)
		}
	}
	return syncWindowInfos(s, ws, pidInfos, &pid)
}

// SyncAll reconciles displays first (via State.HandleDisplayChange,
// which also migrates/restores orphaned windows) and then every
// window against the platform's full on-screen list. Returns the
// window-move list from the display reconciliation separately from
// the sync Result's rehide moves, since they have distinct causes
// (display topology change vs. windows the OS silently relocated).
func SyncAll(s *state.State, ws platform.WindowSystem) (Result, []platform.WindowMove) {
	displayMoves := s.HandleDisplayChange(ws.AllDisplays())
	res := syncWindowInfos(s, ws, ws.OnScreenWindows(), nil)
	return res, displayMoves
}

// SyncFocusedWindow reconciles State.Focused/FocusedDisplay against
// the platform's reported focus. If the focused id is already known,
// it's a cheap update. If not, it resyncs the owning PID (discovered
// via the on-screen list) and retries. As a last resort, with a PID
// hint (used when the platform can't report focus directly, e.g. a
// workspace-activation event without accessibility access yet), it
// picks any visible non-hidden window of that PID.
func SyncFocusedWindow(s *state.State, ws platform.WindowSystem, pidHint *int) Result {
	if focused, ok := ws.FocusedWindow(); ok {
		id := model.WindowID(focused.WindowID)
		if w, ok := s.Window(id); ok {
			s.Focused = &id
			s.FocusedDisplay = w.DisplayID
			return Result{}
		}

		infos := ws.OnScreenWindows()
		for _, info := range infos {
			if model.WindowID(info.WindowID) != id {
				continue
			}
			diag.Infof("sync: focused window %d not in state, syncing pid %d", id, info.PID)
			res := SyncPID(s, ws, info.PID)
			if w, ok := s.Window(id); ok {
				s.Focused = &id
				s.FocusedDisplay = w.DisplayID
			}
			return res
		}
	}

	if pidHint != nil {
		for _, w := range s.Windows {
			if w.PID != *pidHint || w.IsHidden() {
				continue
			}
			if d, ok := s.Display(w.DisplayID); ok && w.Tags.Intersects(d.VisibleTags) {
				diag.Debugf("sync: focus fallback to window %d for pid %d", w.ID, *pidHint)
				s.Focused = &w.ID
				s.FocusedDisplay = w.DisplayID
				return Result{}
			}
		}
	}

	s.Focused = nil
	return Result{}
}
