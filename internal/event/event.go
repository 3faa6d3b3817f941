// Package event defines the StateEvent wire vocabulary pushed to event
// subscribers and Diff (diff.go), which derives a minimal event stream
// from a before/after state comparison (spec §4.7).
package event

// Kind discriminates the tagged-union StateEvent.
type Kind string

const (
	KindWindowCreated    Kind = "window_created"
	KindWindowDestroyed  Kind = "window_destroyed"
	KindWindowUpdated    Kind = "window_updated"
	KindWindowFocused    Kind = "window_focused"
	KindDisplayFocused   Kind = "display_focused"
	KindDisplayAdded     Kind = "display_added"
	KindDisplayRemoved   Kind = "display_removed"
	KindDisplayUpdated   Kind = "display_updated"
	KindTagsChanged      Kind = "tags_changed"
	KindLayoutChanged    Kind = "layout_changed"
	KindSnapshot         Kind = "snapshot"
)

// WindowInfo is the wire representation of a window, shared between
// StateEvent payloads and Snapshot.
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

// DisplayInfo is the wire representation of a display.
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

// StateEvent is the externally-tagged union sent to event subscribers.
type StateEvent struct {
	Type Kind `json:"type"`

	Window   *WindowInfo  `json:"window,omitempty"`
	WindowID *uint32      `json:"window_id,omitempty"`
	Display  *DisplayInfo `json:"display,omitempty"`

	DisplayID *uint32 `json:"display_id,omitempty"`

	VisibleTags  *uint32 `json:"visible_tags,omitempty"`
	PreviousTags *uint32 `json:"previous_tags,omitempty"`

	Layout *string `json:"layout,omitempty"`

	// Snapshot fields.
	Windows           []WindowInfo  `json:"windows,omitempty"`
	Displays          []DisplayInfo `json:"displays,omitempty"`
	FocusedWindowID   *uint32       `json:"focused_window_id,omitempty"`
	FocusedDisplayID  *uint32       `json:"focused_display_id,omitempty"`
	DefaultLayout     *string       `json:"default_layout,omitempty"`
}

func u32p(v uint32) *uint32 { return &v }
func strp(v string) *string { return &v }

func WindowCreated(w WindowInfo) StateEvent {
	return StateEvent{Type: KindWindowCreated, Window: &w}
}

func WindowDestroyed(id uint32) StateEvent {
	return StateEvent{Type: KindWindowDestroyed, WindowID: u32p(id)}
}

func WindowUpdated(w WindowInfo) StateEvent {
	return StateEvent{Type: KindWindowUpdated, Window: &w}
}

func WindowFocused(id *uint32) StateEvent {
	return StateEvent{Type: KindWindowFocused, WindowID: id}
}

func DisplayFocused(id uint32) StateEvent {
	return StateEvent{Type: KindDisplayFocused, DisplayID: u32p(id)}
}

func DisplayAdded(d DisplayInfo) StateEvent {
	return StateEvent{Type: KindDisplayAdded, Display: &d}
}

func DisplayRemoved(id uint32) StateEvent {
	return StateEvent{Type: KindDisplayRemoved, DisplayID: u32p(id)}
}

func DisplayUpdated(d DisplayInfo) StateEvent {
	return StateEvent{Type: KindDisplayUpdated, Display: &d}
}

func TagsChanged(displayID, visible, previous uint32) StateEvent {
	return StateEvent{Type: KindTagsChanged, DisplayID: u32p(displayID), VisibleTags: u32p(visible), PreviousTags: u32p(previous)}
}

func LayoutChanged(displayID uint32, layout string) StateEvent {
	return StateEvent{Type: KindLayoutChanged, DisplayID: u32p(displayID), Layout: strp(layout)}
}

func Snapshot(windows []WindowInfo, displays []DisplayInfo, focusedWindow *uint32, focusedDisplay uint32, defaultLayout string) StateEvent {
	return StateEvent{
		Type:             KindSnapshot,
		Windows:          windows,
		Displays:         displays,
		FocusedWindowID:  focusedWindow,
		FocusedDisplayID: u32p(focusedDisplay),
		DefaultLayout:    strp(defaultLayout),
	}
}

// Filter selects which event categories a subscriber receives.
type Filter struct {
	Window  bool `json:"window"`
	Focus   bool `json:"focus"`
	Display bool `json:"display"`
	Tags    bool `json:"tags"`
	Layout  bool `json:"layout"`
}

// AllFilter subscribes to every category.
func AllFilter() Filter {
	return Filter{Window: true, Focus: true, Display: true, Tags: true, Layout: true}
}

// Any reports whether any category is selected.
func (f Filter) Any() bool {
	return f.Window || f.Focus || f.Display || f.Tags || f.Layout
}

// Matches reports whether ev belongs to a category f subscribes to.
// Snapshot events always pass.
func (f Filter) Matches(ev StateEvent) bool {
	switch ev.Type {
	case KindWindowCreated, KindWindowDestroyed, KindWindowUpdated:
		return f.Window
	case KindWindowFocused, KindDisplayFocused:
		return f.Focus
	case KindDisplayAdded, KindDisplayRemoved, KindDisplayUpdated:
		return f.Display
	case KindTagsChanged:
		return f.Tags
	case KindLayoutChanged:
		return f.Layout
	case KindSnapshot:
		return true
	default:
		return false
	}
}

// SubscribeRequest is the first line sent by an event-socket client.
type SubscribeRequest struct {
	Snapshot bool   `json:"snapshot"`
	Filter   Filter `json:"filter"`
}

// WithSnapshot returns a subscribe request asking for an initial
// snapshot with the default (all) filter.
func WithSnapshot() SubscribeRequest {
	return SubscribeRequest{Snapshot: true}
}

// EffectiveFilter returns the request's filter, or AllFilter() if none
// of its categories were set.
func (r SubscribeRequest) EffectiveFilter() Filter {
	if r.Filter.Any() {
		return r.Filter
	}
	return AllFilter()
}
