package command

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kaedewm/yashiki/internal/config"
	"github.com/kaedewm/yashiki/internal/effect"
	"github.com/kaedewm/yashiki/internal/hotkey"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/platform"
	"github.com/kaedewm/yashiki/internal/rules"
	"github.com/kaedewm/yashiki/internal/state"
	"github.com/kaedewm/yashiki/internal/tag"
)

func directionFromWire(d *Direction) (state.Direction, error) {
	if d == nil {
		return 0, errString("direction is required")
	}
	switch *d {
	case DirLeft:
		return state.DirLeft, nil
	case DirRight:
		return state.DirRight, nil
	case DirUp:
		return state.DirUp, nil
	case DirDown:
		return state.DirDown, nil
	case DirNext:
		return state.DirNext, nil
	case DirPrev:
		return state.DirPrev, nil
	default:
		return 0, errString("unknown direction " + string(*d))
	}
}

func outputDirectionFromWire(d *Direction) (state.OutputDirection, error) {
	if d == nil {
		return 0, errString("direction is required")
	}
	switch *d {
	case DirNext:
		return state.OutputNext, nil
	case DirPrev:
		return state.OutputPrev, nil
	default:
		return 0, errString("output direction must be next or prev, got " + string(*d))
	}
}

type errString string

func (e errString) Error() string { return string(e) }

// resolveOutputSpecifier resolves an optional OutputSpecifier to a
// display id: nil selects the focused display, an id selects by exact
// match, a name selects the lowest-id display whose name contains it
// case-insensitively.
func resolveOutputSpecifier(s *state.State, spec *OutputSpecifier) (model.DisplayID, bool) {
	if spec == nil {
		id := s.FocusedDisplay
		if _, ok := s.Display(id); !ok {
			return 0, false
		}
		return id, true
	}
	if spec.ID != nil {
		id := model.DisplayID(*spec.ID)
		if _, ok := s.Display(id); !ok {
			return 0, false
		}
		return id, true
	}
	needle := strings.ToLower(spec.Name)
	for _, id := range sortedDisplayIDs(s) {
		d, _ := s.Display(id)
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return id, true
		}
	}
	return 0, false
}

func sortedDisplayIDs(s *state.State) []model.DisplayID {
	ids := s.DisplayIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedWindowIDs(s *state.State) []model.WindowID {
	ids := make([]model.WindowID, 0, len(s.Windows))
	for id := range s.Windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func displaySetToSorted(affected map[model.DisplayID]bool) []model.DisplayID {
	out := make([]model.DisplayID, 0, len(affected))
	for id := range affected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// resolveRulesOutput adapts the state's display registry into the
// rules package's output-resolution hook.
func resolveRulesOutput(s *state.State) rules.ResolveOutputFunc {
	return func(spec rules.OutputSpecifier) (model.DisplayID, bool) {
		if spec.ID != nil {
			if _, ok := s.Display(*spec.ID); ok {
				return *spec.ID, true
			}
			return 0, false
		}
		needle := strings.ToLower(spec.NameSubs)
		for _, id := range sortedDisplayIDs(s) {
			d, _ := s.Display(id)
			if strings.Contains(strings.ToLower(d.Name), needle) {
				return id, true
			}
		}
		return 0, false
	}
}

func windowToWire(s *state.State, w *model.Window, debug bool) WindowInfo {
	wi := WindowInfo{
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
	if debug {
		axID, subrole, level := w.Ext.AXID, w.Ext.Subrole, w.Ext.WindowLevel
		wi.AXID, wi.Subrole, wi.WindowLevel = &axID, &subrole, &level
		cb, fb := w.Ext.CloseButton.String(), w.Ext.FullscreenButton.String()
		mb, zb := w.Ext.MinimizeButton.String(), w.Ext.ZoomButton.String()
		wi.CloseButton, wi.FullscreenButton, wi.MinimizeButton, wi.ZoomButton = &cb, &fb, &mb, &zb
	}
	return wi
}

func unmanagedWindowToWire(info platform.WindowInfo) WindowInfo {
	status := "ignored"
	wi := WindowInfo{
		ID:      info.WindowID,
		PID:     info.PID,
		Title:   info.Name,
		AppName: info.OwnerName,
		X:       info.Bounds.X,
		Y:       info.Bounds.Y,
		Width:   uint32(info.Bounds.Width),
		Height:  uint32(info.Bounds.Height),
		Status:  &status,
	}
	if info.BundleID != "" {
		id := info.BundleID
		wi.AppID = &id
	}
	return wi
}

func displayToWire(s *state.State, d *model.Display) DisplayInfo {
	return DisplayInfo{
		ID:          uint32(d.ID),
		Name:        d.Name,
		X:           d.Frame.X,
		Y:           d.Frame.Y,
		Width:       uint32(d.Frame.Width),
		Height:      uint32(d.Frame.Height),
		IsMain:      d.IsMain,
		VisibleTags: d.VisibleTags.Mask(),
		IsFocused:   d.ID == s.FocusedDisplay,
	}
}

func buildStateInfo(s *state.State) *StateInfo {
	ids := sortedWindowIDs(s)
	windows := make([]WindowInfo, len(ids))
	for i, id := range ids {
		windows[i] = windowToWire(s, s.Windows[id], true)
	}
	displayIDs := sortedDisplayIDs(s)
	displays := make([]DisplayInfo, len(displayIDs))
	for i, id := range displayIDs {
		d, _ := s.Display(id)
		displays[i] = displayToWire(s, d)
	}
	var focused *uint32
	if s.Focused != nil {
		id := uint32(*s.Focused)
		focused = &id
	}
	return &StateInfo{
		Windows:          windows,
		Displays:         displays,
		FocusedWindowID:  focused,
		FocusedDisplayID: uint32(s.FocusedDisplay),
		DefaultLayout:    s.DefaultLayout,
	}
}

func findByAppName(s *state.State, name string) (*model.Window, bool) {
	for _, id := range sortedWindowIDs(s) {
		w := s.Windows[id]
		if strings.EqualFold(w.AppName, name) {
			return w, true
		}
	}
	return nil, false
}

// tagEffects builds the standard effect sequence for a tag-view style
// command, comparing the display's visible tags before/after to
// detect a no-op (including the "reject empty toggle" case, which
// state.ToggleTagsOnDisplay already leaves unchanged).
func tagEffects(s *state.State, id model.DisplayID, before tag.Tag, moves []platform.WindowMove) (Response, []effect.Effect) {
	d, ok := s.Display(id)
	if !ok || d.VisibleTags == before {
		return Ok(), nil
	}
	s.ComputeLayoutChangesForDisplay(id)
	return Ok(), []effect.Effect{
		effect.ApplyWindowMoves(moves),
		effect.RetileDisplays([]model.DisplayID{id}),
		effect.FocusVisibleWindowIfNeeded(id),
	}
}

func ruleApplicationEffects(affected map[model.DisplayID]bool, moves []platform.WindowMove) []effect.Effect {
	var effects []effect.Effect
	if len(moves) > 0 {
		effects = append(effects, effect.ApplyWindowMoves(moves))
	}
	if ids := displaySetToSorted(affected); len(ids) > 0 {
		effects = append(effects, effect.RetileDisplays(ids))
	}
	return effects
}

// Process is the pure command dispatcher: given the current State, the
// hotkey Store, and a Command, it returns the Response to send back
// and the ordered Effects the executor should apply. onScreen is only
// consulted for ListWindows{all:true}; the IPC-facing wrapper is
// responsible for calling platform.WindowSystem.OnScreenWindows() and
// passing the result in — Process itself never touches the platform.
func Process(s *state.State, store *hotkey.Store, cmd Command, onScreen []platform.WindowInfo) (Response, []effect.Effect) {
	switch cmd.Type {

	case KindWindowFocus:
		dir, err := directionFromWire(cmd.Direction)
		if err != nil {
			return Error(err.Error()), nil
		}
		id, ok := s.CandidateInDirection(dir)
		if !ok {
			return Error("no window to focus"), nil
		}
		w, _ := s.Window(id)
		return Ok(), []effect.Effect{effect.FocusWindow(w.ID, w.PID)}

	case KindWindowSwap:
		dir, err := directionFromWire(cmd.Direction)
		if err != nil {
			return Error(err.Error()), nil
		}
		if !s.SwapWindow(dir) {
			return Error("no window to swap with"), nil
		}
		w, ok := s.FocusedWindow()
		if !ok {
			return Ok(), nil
		}
		return Ok(), []effect.Effect{effect.RetileDisplays([]model.DisplayID{w.DisplayID})}

	case KindWindowClose:
		w, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		return Ok(), []effect.Effect{effect.CloseWindow(w.ID, w.PID)}

	case KindWindowToggleFloat:
		w, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		w.IsFloating = !w.IsFloating
		if d, ok := s.Display(w.DisplayID); ok {
			if w.IsTiled() {
				d.AddToWindowOrder(w.ID)
			} else {
				d.RemoveFromWindowOrder(w.ID)
			}
		}
		return Ok(), []effect.Effect{effect.RetileDisplays([]model.DisplayID{w.DisplayID})}

	case KindWindowToggleFullscreen:
		w, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		w.IsFullscreen = !w.IsFullscreen
		var effects []effect.Effect
		if w.IsFullscreen {
			if d, ok := s.Display(w.DisplayID); ok {
				effects = append(effects, effect.ApplyFullscreen(w.ID, w.PID, d.Frame))
			}
		}
		effects = append(effects, effect.RetileDisplays([]model.DisplayID{w.DisplayID}))
		return Ok(), effects

	case KindWindowMoveToTag:
		if cmd.Tags == nil {
			return Error("tags is required"), nil
		}
		mask := tag.FromMask(*cmd.Tags)
		if mask.IsEmpty() {
			return Error("tags must not be empty"), nil
		}
		w, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		move, changed := s.SetWindowTags(w.ID, mask)
		var moves []platform.WindowMove
		if changed {
			moves = append(moves, move)
		}
		return Ok(), []effect.Effect{
			effect.ApplyWindowMoves(moves),
			effect.RetileDisplays([]model.DisplayID{w.DisplayID}),
			effect.FocusVisibleWindowIfNeeded(w.DisplayID),
		}

	case KindWindowToggleTag:
		if cmd.Tags == nil {
			return Error("tags is required"), nil
		}
		w, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		move, changed := s.ToggleWindowTags(w.ID, tag.FromMask(*cmd.Tags))
		var moves []platform.WindowMove
		if changed {
			moves = append(moves, move)
		}
		return Ok(), []effect.Effect{
			effect.ApplyWindowMoves(moves),
			effect.RetileDisplays([]model.DisplayID{w.DisplayID}),
			effect.FocusVisibleWindowIfNeeded(w.DisplayID),
		}

	case KindTagView:
		if cmd.Tags == nil {
			return Error("tags is required"), nil
		}
		mask := tag.FromMask(*cmd.Tags)
		if mask.IsEmpty() {
			return Error("tags must not be empty"), nil
		}
		id, ok := resolveOutputSpecifier(s, cmd.Output)
		if !ok {
			return Error("unknown output"), nil
		}
		d, _ := s.Display(id)
		before := d.VisibleTags
		moves := s.ViewTagsOnDisplay(id, mask)
		return tagEffects(s, id, before, moves)

	case KindTagToggle:
		if cmd.Tags == nil {
			return Error("tags is required"), nil
		}
		id, ok := resolveOutputSpecifier(s, cmd.Output)
		if !ok {
			return Error("unknown output"), nil
		}
		d, _ := s.Display(id)
		before := d.VisibleTags
		moves := s.ToggleTagsOnDisplay(id, tag.FromMask(*cmd.Tags))
		return tagEffects(s, id, before, moves)

	case KindTagViewLast:
		id := s.FocusedDisplay
		d, ok := s.Display(id)
		if !ok {
			return Error("no focused display"), nil
		}
		if d.PreviousVisibleTags.IsEmpty() {
			return Ok(), nil
		}
		before := d.VisibleTags
		moves := s.ViewTagsLastOnDisplay(id)
		return tagEffects(s, id, before, moves)

	case KindOutputFocus:
		dir, err := outputDirectionFromWire(cmd.Direction)
		if err != nil {
			return Error(err.Error()), nil
		}
		if !s.FocusOutput(dir) {
			return Error("no other output"), nil
		}
		target := s.FocusedDisplay
		if w, ok := s.PreferredVisibleWindow(target); ok {
			return Ok(), []effect.Effect{effect.FocusWindowWithOutputChange(w.ID, w.PID)}
		}
		return Ok(), []effect.Effect{effect.WarpCursorToDisplay(target)}

	case KindOutputSend:
		dir, err := outputDirectionFromWire(cmd.Direction)
		if err != nil {
			return Error(err.Error()), nil
		}
		cur, ok := s.FocusedWindow()
		if !ok {
			return Error("no focused window"), nil
		}
		srcID := cur.DisplayID
		srcDisplay, _ := s.Display(srcID)
		oldFrame := cur.Frame
		moves := s.SendToOutput(dir)
		dstID := cur.DisplayID
		if dstID == srcID {
			return Ok(), nil
		}
		dstDisplay, _ := s.Display(dstID)
		var effects []effect.Effect
		if len(moves) > 0 {
			effects = append(effects, effect.ApplyWindowMoves(moves))
		} else if srcDisplay != nil && dstDisplay != nil {
			relX, relY := oldFrame.X-srcDisplay.Frame.X, oldFrame.Y-srcDisplay.Frame.Y
			newX, newY := dstDisplay.Frame.X+relX, dstDisplay.Frame.Y+relY
			effects = append(effects, effect.MoveWindowToPosition(cur.ID, cur.PID, newX, newY))
			cur.Frame.X, cur.Frame.Y = newX, newY
		}
		effects = append(effects, effect.RetileDisplays([]model.DisplayID{srcID, dstID}))
		return Ok(), effects

	case KindLayoutSetDefault:
		if cmd.Layout == nil || *cmd.Layout == "" {
			return Error("layout is required"), nil
		}
		s.DefaultLayout = *cmd.Layout
		var affected []model.DisplayID
		for _, id := range sortedDisplayIDs(s) {
			if s.ComputeLayoutChangesForDisplay(id) {
				affected = append(affected, id)
			}
		}
		if len(affected) == 0 {
			return Ok(), nil
		}
		return Ok(), []effect.Effect{effect.RetileDisplays(affected)}

	case KindLayoutSet:
		if cmd.Layout == nil || *cmd.Layout == "" {
			return Error("layout is required"), nil
		}
		layout := *cmd.Layout
		var affected []model.DisplayID
		if cmd.Tags != nil {
			t := tag.FromMask(*cmd.Tags)
			for n := 1; n <= 32; n++ {
				if t.Intersects(tag.New(n)) {
					s.TagLayouts[n] = layout
				}
			}
			for _, id := range sortedDisplayIDs(s) {
				d, _ := s.Display(id)
				if d.VisibleTags.Intersects(t) && s.ComputeLayoutChangesForDisplay(id) {
					affected = append(affected, id)
				}
			}
		}
		if cmd.Output != nil {
			id, ok := resolveOutputSpecifier(s, cmd.Output)
			if !ok {
				return Error("unknown output"), nil
			}
			d, _ := s.Display(id)
			if d.CurrentLayout != layout {
				d.PreviousLayout, d.CurrentLayout = d.CurrentLayout, layout
				affected = append(affected, id)
			}
		}
		if cmd.Tags == nil && cmd.Output == nil {
			id := s.FocusedDisplay
			d, ok := s.Display(id)
			if !ok {
				return Error("no focused display"), nil
			}
			if d.CurrentLayout != layout {
				d.PreviousLayout, d.CurrentLayout = d.CurrentLayout, layout
				affected = append(affected, id)
			}
		}
		if len(affected) == 0 {
			return Ok(), nil
		}
		return Ok(), []effect.Effect{effect.RetileDisplays(affected)}

	case KindLayoutGet:
		if cmd.Output != nil {
			id, ok := resolveOutputSpecifier(s, cmd.Output)
			if !ok {
				return Error("unknown output"), nil
			}
			return LayoutResponse(s.LayoutForDisplay(id)), nil
		}
		if cmd.Tags != nil {
			t := tag.FromMask(*cmd.Tags)
			n, ok := t.FirstTag()
			if !ok {
				return Error("tags must not be empty"), nil
			}
			if l, ok := s.TagLayouts[n]; ok {
				return LayoutResponse(l), nil
			}
			return LayoutResponse(s.DefaultLayout), nil
		}
		return LayoutResponse(s.LayoutForDisplay(s.FocusedDisplay)), nil

	case KindLayoutCommand:
		effects := []effect.Effect{effect.SendLayoutCommand(s.FocusedDisplay, cmd.Layout, cmd.LayoutCmd, cmd.LayoutArgs)}
		if cmd.Layout == nil {
			effects = append(effects, effect.Retile())
		}
		return Ok(), effects

	case KindRetile:
		if cmd.Output == nil {
			return Ok(), []effect.Effect{effect.Retile()}
		}
		id, ok := resolveOutputSpecifier(s, cmd.Output)
		if !ok {
			return Error("unknown output"), nil
		}
		return Ok(), []effect.Effect{effect.RetileDisplays([]model.DisplayID{id})}

	case KindBind:
		h, err := hotkey.Parse(cmd.Key)
		if err != nil {
			return Error(err.Error()), nil
		}
		if len(cmd.Action) == 0 {
			return Error("action is required"), nil
		}
		store.Bind(h, cmd.Action)
		return Ok(), nil

	case KindUnbind:
		h, err := hotkey.Parse(cmd.Key)
		if err != nil {
			return Error(err.Error()), nil
		}
		if !store.Unbind(h) {
			return Error("no binding for that key"), nil
		}
		return Ok(), nil

	case KindListBindings:
		return BindingsResponse(bindingsToWire(store.List())), nil

	case KindListWindows:
		var windows []WindowInfo
		seen := make(map[uint32]bool, len(s.Windows))
		for _, id := range sortedWindowIDs(s) {
			windows = append(windows, windowToWire(s, s.Windows[id], cmd.Debug))
			seen[uint32(id)] = true
		}
		if cmd.All {
			for _, info := range onScreen {
				if seen[info.WindowID] {
					continue
				}
				windows = append(windows, unmanagedWindowToWire(info))
			}
		}
		return WindowsResponse(windows), nil

	case KindListOutputs:
		ids := sortedDisplayIDs(s)
		outputs := make([]DisplayInfo, len(ids))
		for i, id := range ids {
			d, _ := s.Display(id)
			outputs[i] = displayToWire(s, d)
		}
		return OutputsResponse(outputs), nil

	case KindGetState:
		return StateResponse(buildStateInfo(s)), nil

	case KindFocusedWindow:
		w, ok := s.FocusedWindow()
		if !ok {
			return WindowIDResponse(nil), nil
		}
		id := uint32(w.ID)
		return WindowIDResponse(&id), nil

	case KindExec:
		if cmd.Command == "" {
			return Error("command is required"), nil
		}
		if cmd.Track {
			return Ok(), []effect.Effect{effect.ExecCommandTracked(cmd.Command)}
		}
		return Ok(), []effect.Effect{effect.ExecCommand(cmd.Command)}

	case KindExecOrFocus:
		if w, ok := findByAppName(s, cmd.AppName); ok {
			d, ok := s.Display(w.DisplayID)
			if ok && !w.IsHidden() && w.Tags.Intersects(d.VisibleTags) {
				return Ok(), []effect.Effect{effect.FocusWindow(w.ID, w.PID)}
			}
			n, ok := w.Tags.FirstTag()
			if !ok {
				return Error("window has no tags"), nil
			}
			moves := s.ViewTagsOnDisplay(w.DisplayID, tag.New(n))
			s.ComputeLayoutChangesForDisplay(w.DisplayID)
			return Ok(), []effect.Effect{
				effect.ApplyWindowMoves(moves),
				effect.RetileDisplays([]model.DisplayID{w.DisplayID}),
				effect.FocusWindow(w.ID, w.PID),
			}
		}
		if cmd.Command == "" {
			return Error("command is required"), nil
		}
		return Ok(), []effect.Effect{effect.ExecCommand(cmd.Command)}

	case KindGetExecPath:
		return ExecPathResponse(s.Config.ExecPath), nil

	case KindSetExecPath:
		s.Config.ExecPath = cmd.Path
		return Ok(), []effect.Effect{effect.UpdateLayoutExecPath(cmd.Path)}

	case KindAddExecPath:
		newPath := config.AddExecPath(s.Config.ExecPath, cmd.Path, cmd.Append)
		s.Config.ExecPath = newPath
		return Ok(), []effect.Effect{effect.UpdateLayoutExecPath(newPath)}

	case KindRuleAdd:
		if cmd.Rule == nil {
			return Error("rule is required"), nil
		}
		r, err := ruleWireToRule(*cmd.Rule)
		if err != nil {
			return Error(err.Error()), nil
		}
		s.Rules.Add(r)
		if !s.InitCompleted {
			return Ok(), nil
		}
		affected, moves := s.ApplyRulesToAllWindows(resolveRulesOutput(s))
		return Ok(), ruleApplicationEffects(affected, moves)

	case KindRuleDel:
		if cmd.Rule == nil {
			return Error("rule is required"), nil
		}
		r, err := ruleWireToRule(*cmd.Rule)
		if err != nil {
			return Error(err.Error()), nil
		}
		if !s.Rules.Remove(r.Matcher, r.Action) {
			return Error("no matching rule"), nil
		}
		return Ok(), nil

	case KindListRules:
		rs := s.Rules.Rules()
		out := make([]RuleWire, len(rs))
		for i, r := range rs {
			out[i] = ruleToRuleWire(r)
		}
		return RulesResponse(out), nil

	case KindApplyRules:
		s.InitCompleted = true
		affected, moves := s.ApplyRulesToAllWindows(resolveRulesOutput(s))
		return Ok(), ruleApplicationEffects(affected, moves)

	case KindSetCursorWarp:
		mode, err := parseCursorWarpMode(cmd.CursorWarp)
		if err != nil {
			return Error(err.Error()), nil
		}
		s.Config.CursorWarp = mode
		return Ok(), nil

	case KindGetCursorWarp:
		return CursorWarpResponse(s.Config.CursorWarp.String()), nil

	case KindSetOuterGap:
		strs := make([]string, len(cmd.OuterGapValues))
		for i, v := range cmd.OuterGapValues {
			strs[i] = strconv.Itoa(v)
		}
		gap, ok := config.FromArgs(strs)
		if !ok {
			return Error("outer gap requires 1, 2, or 4 integer values"), nil
		}
		s.Config.OuterGap = gap
		return Ok(), []effect.Effect{effect.Retile()}

	case KindGetOuterGap:
		return OuterGapResponse(s.Config.OuterGap), nil

	case KindQuit:
		return Ok(), nil

	default:
		return errorf("unknown command type %q", cmd.Type), nil
	}
}
