// Package command implements the IPC command vocabulary and its pure
// dispatcher: Process takes a Command plus the current State/hotkey
// Store and returns a Response together with the Effects the executor
// should apply. Process never performs I/O itself (spec §4.3, §9) —
// every platform or layout-engine side effect is described, not
// executed, here.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/kaedewm/yashiki/internal/config"
	"github.com/kaedewm/yashiki/internal/glob"
	"github.com/kaedewm/yashiki/internal/hotkey"
	"github.com/kaedewm/yashiki/internal/model"
	"github.com/kaedewm/yashiki/internal/rules"
)

// Kind discriminates the tagged-union Command.
type Kind string

const (
	KindWindowFocus            Kind = "window_focus"
	KindWindowSwap             Kind = "window_swap"
	KindWindowClose            Kind = "window_close"
	KindWindowToggleFloat      Kind = "window_toggle_float"
	KindWindowToggleFullscreen Kind = "window_toggle_fullscreen"
	KindWindowMoveToTag        Kind = "window_move_to_tag"
	KindWindowToggleTag        Kind = "window_toggle_tag"

	KindTagView     Kind = "tag_view"
	KindTagToggle   Kind = "tag_toggle"
	KindTagViewLast Kind = "tag_view_last"

	KindOutputFocus Kind = "output_focus"
	KindOutputSend  Kind = "output_send"

	KindLayoutSetDefault Kind = "layout_set_default"
	KindLayoutSet        Kind = "layout_set"
	KindLayoutGet        Kind = "layout_get"
	KindLayoutCommand    Kind = "layout_command"

	KindRetile Kind = "retile"

	KindBind         Kind = "bind"
	KindUnbind       Kind = "unbind"
	KindListBindings Kind = "list_bindings"

	KindListWindows Kind = "list_windows"
	KindListOutputs Kind = "list_outputs"
	KindGetState    Kind = "get_state"
	KindFocusedWindow Kind = "focused_window"

	KindExec          Kind = "exec"
	KindExecOrFocus   Kind = "exec_or_focus"
	KindGetExecPath   Kind = "get_exec_path"
	KindSetExecPath   Kind = "set_exec_path"
	KindAddExecPath   Kind = "add_exec_path"

	KindRuleAdd    Kind = "rule_add"
	KindRuleDel    Kind = "rule_del"
	KindListRules  Kind = "list_rules"
	KindApplyRules Kind = "apply_rules"

	KindSetCursorWarp Kind = "set_cursor_warp"
	KindGetCursorWarp Kind = "get_cursor_warp"
	KindSetOuterGap   Kind = "set_outer_gap"
	KindGetOuterGap   Kind = "get_outer_gap"

	KindQuit Kind = "quit"
)

// Direction is the wire form of a window-focus/swap/output direction.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirNext  Direction = "next"
	DirPrev  Direction = "prev"
)

// OutputSpecifier is an untagged JSON union: a bare number selects a
// display by id, a bare string selects the first display whose name
// contains it case-insensitively.
type OutputSpecifier struct {
	ID   *uint32
	Name string
}

func (o OutputSpecifier) MarshalJSON() ([]byte, error) {
	if o.ID != nil {
		return json.Marshal(*o.ID)
	}
	return json.Marshal(o.Name)
}

func (o *OutputSpecifier) UnmarshalJSON(data []byte) error {
	var n uint32
	if err := json.Unmarshal(data, &n); err == nil {
		o.ID, o.Name = &n, ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("command: invalid output specifier %s", data)
	}
	o.ID, o.Name = nil, s
	return nil
}

// ActionKindWire is the wire form of a rule action's kind.
type ActionKindWire string

const (
	ActionWireIgnore     ActionKindWire = "ignore"
	ActionWireFloat      ActionKindWire = "float"
	ActionWireNoFloat    ActionKindWire = "no_float"
	ActionWireTags       ActionKindWire = "tags"
	ActionWireOutput     ActionKindWire = "output"
	ActionWirePosition   ActionKindWire = "position"
	ActionWireDimensions ActionKindWire = "dimensions"
)

// ActionWire is the wire form of rules.Action.
type ActionWire struct {
	Kind ActionKindWire `json:"kind"`

	Tags   *uint32          `json:"tags,omitempty"`
	Output *OutputSpecifier `json:"output,omitempty"`
	X      *int             `json:"x,omitempty"`
	Y      *int             `json:"y,omitempty"`
	Width  *uint32          `json:"width,omitempty"`
	Height *uint32          `json:"height,omitempty"`
}

// MatcherWire is the wire form of rules.Matcher.
type MatcherWire struct {
	AppName *string `json:"app_name,omitempty"`
	AppID   *string `json:"app_id,omitempty"`
	Title   *string `json:"title,omitempty"`
	AXID    *string `json:"ax_id,omitempty"`
	Subrole *string `json:"subrole,omitempty"`

	WindowLevel      *int    `json:"window_level,omitempty"`
	CloseButton      *string `json:"close_button,omitempty"`
	FullscreenButton *string `json:"fullscreen_button,omitempty"`
	MinimizeButton   *string `json:"minimize_button,omitempty"`
	ZoomButton       *string `json:"zoom_button,omitempty"`
}

// RuleWire is the wire form of rules.Rule, used by RuleAdd/RuleDel/ListRules.
type RuleWire struct {
	Matcher MatcherWire `json:"matcher"`
	Action  ActionWire  `json:"action"`
}

// BindingWire is the wire form of a hotkey binding.
type BindingWire struct {
	Key    string          `json:"key"`
	Action json.RawMessage `json:"action"`
}

// OuterGapWire is the wire form of config.OuterGap.
type OuterGapWire struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Command is the externally-tagged request union accepted on the
// command socket and bound to hotkeys.
type Command struct {
	Type Kind `json:"type"`

	Direction *Direction       `json:"direction,omitempty"`
	Tags      *uint32          `json:"tags,omitempty"`
	Output    *OutputSpecifier `json:"output,omitempty"`

	Layout     *string  `json:"layout,omitempty"`    // LayoutSetDefault/LayoutSet/LayoutGet/LayoutCommand target
	LayoutCmd  string   `json:"cmd,omitempty"`       // LayoutCommand
	LayoutArgs []string `json:"args,omitempty"`      // LayoutCommand

	Key    string          `json:"key,omitempty"`    // Bind/Unbind
	Action json.RawMessage `json:"action,omitempty"` // Bind: the nested Command to fire

	All   bool `json:"all,omitempty"`   // ListWindows
	Debug bool `json:"debug,omitempty"` // ListWindows

	Command string `json:"command,omitempty"`  // Exec/ExecOrFocus cmdline
	Track   bool   `json:"track,omitempty"`     // Exec
	AppName string `json:"app_name,omitempty"`  // ExecOrFocus

	Path   string `json:"path,omitempty"`   // SetExecPath/AddExecPath
	Append bool   `json:"append,omitempty"` // AddExecPath

	Rule *RuleWire `json:"rule,omitempty"` // RuleAdd/RuleDel

	CursorWarp *string `json:"cursor_warp,omitempty"` // SetCursorWarp

	OuterGapValues []int `json:"outer_gap_values,omitempty"` // SetOuterGap
}

// RespKind discriminates the tagged-union Response.
type RespKind string

const (
	RespOk         RespKind = "ok"
	RespError      RespKind = "error"
	RespWindows    RespKind = "windows"
	RespOutputs    RespKind = "outputs"
	RespState      RespKind = "state"
	RespBindings   RespKind = "bindings"
	RespRules      RespKind = "rules"
	RespWindowID   RespKind = "window_id"
	RespLayout     RespKind = "layout"
	RespExecPath   RespKind = "exec_path"
	RespCursorWarp RespKind = "cursor_warp"
	RespOuterGap   RespKind = "outer_gap"
)

// Response is the externally-tagged reply union.
type Response struct {
	Type RespKind `json:"type"`

	Message string `json:"message,omitempty"`

	Windows  []WindowInfo  `json:"windows,omitempty"`
	Outputs  []DisplayInfo `json:"outputs,omitempty"`
	State    *StateInfo    `json:"state,omitempty"`
	Bindings []BindingWire `json:"bindings,omitempty"`
	Rules    []RuleWire    `json:"rules,omitempty"`

	WindowID *uint32 `json:"id,omitempty"`
	Layout   string  `json:"layout,omitempty"`
	ExecPath string  `json:"path,omitempty"`
	Mode     string  `json:"mode,omitempty"`

	OuterGap *OuterGapWire `json:"outer_gap,omitempty"`
}

func Ok() Response { return Response{Type: RespOk} }

func Error(msg string) Response { return Response{Type: RespError, Message: msg} }

func errorf(format string, args ...any) Response { return Error(fmt.Sprintf(format, args...)) }

func WindowsResponse(w []WindowInfo) Response { return Response{Type: RespWindows, Windows: w} }

func OutputsResponse(o []DisplayInfo) Response { return Response{Type: RespOutputs, Outputs: o} }

func StateResponse(s *StateInfo) Response { return Response{Type: RespState, State: s} }

func BindingsResponse(b []BindingWire) Response { return Response{Type: RespBindings, Bindings: b} }

func RulesResponse(r []RuleWire) Response { return Response{Type: RespRules, Rules: r} }

func WindowIDResponse(id *uint32) Response { return Response{Type: RespWindowID, WindowID: id} }

func LayoutResponse(l string) Response { return Response{Type: RespLayout, Layout: l} }

func ExecPathResponse(p string) Response { return Response{Type: RespExecPath, ExecPath: p} }

func CursorWarpResponse(mode string) Response { return Response{Type: RespCursorWarp, Mode: mode} }

func OuterGapResponse(g config.OuterGap) Response {
	return Response{Type: RespOuterGap, OuterGap: &OuterGapWire{Top: g.Top, Right: g.Right, Bottom: g.Bottom, Left: g.Left}}
}

// WindowInfo and DisplayInfo mirror internal/event's wire shapes; a
// distinct type here (rather than importing internal/event) keeps
// command's wire vocabulary self-contained and avoids coupling the
// IPC command/response schema to the event-stream schema, which is
// free to evolve on its own (new event categories, filters) without
// breaking command responses.
type WindowInfo struct {
	ID               uint32  `json:"id"`
	PID              int     `json:"pid"`
	Title            string  `json:"title"`
	AppName          string  `json:"app_name"`
	AppID            *string `json:"app_id,omitempty"`
	Tags             uint32  `json:"tags"`
	X                int     `json:"x"`
	Y                int     `json:"y"`
	Width            uint32  `json:"width"`
	Height           uint32  `json:"height"`
	IsFocused        bool    `json:"is_focused"`
	IsFloating       bool    `json:"is_floating"`
	IsFullscreen     bool    `json:"is_fullscreen"`
	OutputID         uint32  `json:"output_id"`
	Status           *string `json:"status,omitempty"`
	AXID             *string `json:"ax_id,omitempty"`
	Subrole          *string `json:"subrole,omitempty"`
	WindowLevel      *int    `json:"window_level,omitempty"`
	CloseButton      *string `json:"close_button,omitempty"`
	FullscreenButton *string `json:"fullscreen_button,omitempty"`
	MinimizeButton   *string `json:"minimize_button,omitempty"`
	ZoomButton       *string `json:"zoom_button,omitempty"`
}

type DisplayInfo struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	IsMain      bool   `json:"is_main"`
	VisibleTags uint32 `json:"visible_tags"`
	IsFocused   bool   `json:"is_focused"`
}

// StateInfo is the full dump returned by GetState.
type StateInfo struct {
	Windows          []WindowInfo  `json:"windows"`
	Displays         []DisplayInfo `json:"displays"`
	FocusedWindowID  *uint32       `json:"focused_window_id,omitempty"`
	FocusedDisplayID uint32        `json:"focused_display_id"`
	DefaultLayout    string        `json:"default_layout"`
}

func buttonStateFromWire(s *string) (*model.ButtonState, error) {
	if s == nil {
		return nil, nil
	}
	var v model.ButtonState
	switch *s {
	case "none":
		v = model.ButtonStateNone
	case "exists":
		v = model.ButtonStateExists
	case "enabled":
		v = model.ButtonStateEnabled
	case "disabled":
		v = model.ButtonStateDisabled
	default:
		return nil, fmt.Errorf("command: unknown button state %q", *s)
	}
	return &v, nil
}

func buttonStateToWire(v *model.ButtonState) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func matcherWireToMatcher(w MatcherWire) (rules.Matcher, error) {
	var m rules.Matcher
	if w.AppName != nil {
		p := glob.New(*w.AppName)
		m.AppName = &p
	}
	if w.AppID != nil {
		p := glob.New(*w.AppID)
		m.AppID = &p
	}
	if w.Title != nil {
		p := glob.New(*w.Title)
		m.Title = &p
	}
	if w.AXID != nil {
		p := glob.New(*w.AXID)
		m.AXID = &p
	}
	if w.Subrole != nil {
		p := glob.New(*w.Subrole)
		m.Subrole = &p
	}
	m.WindowLevel = w.WindowLevel
	var err error
	if m.CloseButton, err = buttonStateFromWire(w.CloseButton); err != nil {
		return m, err
	}
	if m.FullscreenButton, err = buttonStateFromWire(w.FullscreenButton); err != nil {
		return m, err
	}
	if m.MinimizeButton, err = buttonStateFromWire(w.MinimizeButton); err != nil {
		return m, err
	}
	if m.ZoomButton, err = buttonStateFromWire(w.ZoomButton); err != nil {
		return m, err
	}
	return m, nil
}

func matcherToMatcherWire(m rules.Matcher) MatcherWire {
	w := MatcherWire{WindowLevel: m.WindowLevel}
	if m.AppName != nil {
		s := m.AppName.String()
		w.AppName = &s
	}
	if m.AppID != nil {
		s := m.AppID.String()
		w.AppID = &s
	}
	if m.Title != nil {
		s := m.Title.String()
		w.Title = &s
	}
	if m.AXID != nil {
		s := m.AXID.String()
		w.AXID = &s
	}
	if m.Subrole != nil {
		s := m.Subrole.String()
		w.Subrole = &s
	}
	w.CloseButton = buttonStateToWire(m.CloseButton)
	w.FullscreenButton = buttonStateToWire(m.FullscreenButton)
	w.MinimizeButton = buttonStateToWire(m.MinimizeButton)
	w.ZoomButton = buttonStateToWire(m.ZoomButton)
	return w
}

func outputSpecifierToRules(o OutputSpecifier) rules.OutputSpecifier {
	if o.ID != nil {
		id := model.DisplayID(*o.ID)
		return rules.OutputSpecifier{ID: &id}
	}
	return rules.OutputSpecifier{NameSubs: o.Name}
}

func rulesOutputToWire(o rules.OutputSpecifier) OutputSpecifier {
	if o.ID != nil {
		id := uint32(*o.ID)
		return OutputSpecifier{ID: &id}
	}
	return OutputSpecifier{Name: o.NameSubs}
}

func actionWireToAction(w ActionWire) (rules.Action, error) {
	var a rules.Action
	switch w.Kind {
	case ActionWireIgnore:
		a.Kind = rules.ActionIgnore
	case ActionWireFloat:
		a.Kind = rules.ActionFloat
	case ActionWireNoFloat:
		a.Kind = rules.ActionNoFloat
	case ActionWireTags:
		if w.Tags == nil {
			return a, fmt.Errorf("command: tags action requires tags")
		}
		a.Kind, a.Tags = rules.ActionTags, *w.Tags
	case ActionWireOutput:
		if w.Output == nil {
			return a, fmt.Errorf("command: output action requires output")
		}
		a.Kind, a.Output = rules.ActionOutput, outputSpecifierToRules(*w.Output)
	case ActionWirePosition:
		if w.X == nil || w.Y == nil {
			return a, fmt.Errorf("command: position action requires x and y")
		}
		a.Kind, a.X, a.Y = rules.ActionPosition, *w.X, *w.Y
	case ActionWireDimensions:
		if w.Width == nil || w.Height == nil {
			return a, fmt.Errorf("command: dimensions action requires width and height")
		}
		a.Kind, a.W, a.H = rules.ActionDimensions, *w.Width, *w.Height
	default:
		return a, fmt.Errorf("command: unknown rule action kind %q", w.Kind)
	}
	return a, nil
}

func actionToActionWire(a rules.Action) ActionWire {
	w := ActionWire{}
	switch a.Kind {
	case rules.ActionIgnore:
		w.Kind = ActionWireIgnore
	case rules.ActionFloat:
		w.Kind = ActionWireFloat
	case rules.ActionNoFloat:
		w.Kind = ActionWireNoFloat
	case rules.ActionTags:
		w.Kind = ActionWireTags
		t := a.Tags
		w.Tags = &t
	case rules.ActionOutput:
		w.Kind = ActionWireOutput
		o := rulesOutputToWire(a.Output)
		w.Output = &o
	case rules.ActionPosition:
		w.Kind = ActionWirePosition
		x, y := a.X, a.Y
		w.X, w.Y = &x, &y
	case rules.ActionDimensions:
		w.Kind = ActionWireDimensions
		wd, h := a.W, a.H
		w.Width, w.Height = &wd, &h
	}
	return w
}

func ruleWireToRule(w RuleWire) (rules.Rule, error) {
	m, err := matcherWireToMatcher(w.Matcher)
	if err != nil {
		return rules.Rule{}, err
	}
	a, err := actionWireToAction(w.Action)
	if err != nil {
		return rules.Rule{}, err
	}
	return rules.Rule{Matcher: m, Action: a}, nil
}

func ruleToRuleWire(r rules.Rule) RuleWire {
	return RuleWire{Matcher: matcherToMatcherWire(r.Matcher), Action: actionToActionWire(r.Action)}
}

func parseCursorWarpMode(s *string) (config.CursorWarpMode, error) {
	if s == nil {
		return 0, fmt.Errorf("mode is required")
	}
	switch *s {
	case "disabled":
		return config.CursorWarpDisabled, nil
	case "on_output_change":
		return config.CursorWarpOnOutputChange, nil
	case "on_focus_change":
		return config.CursorWarpOnFocusChange, nil
	default:
		return 0, fmt.Errorf("unknown cursor warp mode %q", *s)
	}
}

// bindingsToWire adapts hotkey.Store's binding list
// to the command package's BindingWire, keyed by the hotkey's
// canonical string form.
func bindingsToWire(bindings []hotkey.Binding) []BindingWire {
	out := make([]BindingWire, len(bindings))
	for i, b := range bindings {
		out[i] = BindingWire{Key: b.Hotkey.String(), Action: b.Command}
	}
	return out
}
