package event

// WindowProperties is the subset of a window's fields compared across
// a command's processing to detect a change worth notifying
// subscribers about (spec §4.7).
type WindowProperties struct {
	Tags         uint32
	DisplayID    uint32
	IsFloating   bool
	IsFullscreen bool
}

// DisplaySnapshot is the subset of a display's fields compared across
// a command. CurrentLayout == "" means "unset".
type DisplaySnapshot struct {
	VisibleTags   uint32
	CurrentLayout string
}

// WindowSnapshot pairs a window's comparable properties with its full
// wire representation, needed to populate a WindowUpdated payload.
type WindowSnapshot struct {
	Info       WindowInfo
	Properties WindowProperties
}

// PreState captures the fields of State needed to diff against the
// state after a command has been processed.
type PreState struct {
	Windows        map[uint32]WindowProperties
	Displays       map[uint32]DisplaySnapshot
	Focused        *uint32
	FocusedDisplay uint32
}

// PostState is the same shape as PreState, but windows carry their
// full wire info for use in WindowUpdated events.
type PostState struct {
	Windows        map[uint32]WindowSnapshot
	Displays       map[uint32]DisplaySnapshot
	Focused        *uint32
	FocusedDisplay uint32
}

// Diff derives the minimal StateEvent stream implied by moving from
// pre to post. Window creation/destruction driven by platform sync is
// emitted directly by the sync package; this comparator only covers
// property drift and focus/tag/layout changes caused by command
// processing, plus windows that vanished from post (e.g. closed as a
// direct effect of the command itself).
func Diff(pre PreState, post PostState) []StateEvent {
	var events []StateEvent

	if !equalUint32Ptr(pre.Focused, post.Focused) {
		events = append(events, WindowFocused(post.Focused))
	}
	if pre.FocusedDisplay != post.FocusedDisplay {
		events = append(events, DisplayFocused(post.FocusedDisplay))
	}

	for id, postD := range post.Displays {
		preD, existed := pre.Displays[id]
		if !existed || preD.VisibleTags != postD.VisibleTags {
			events = append(events, TagsChanged(id, postD.VisibleTags, preD.VisibleTags))
		}
		if postD.CurrentLayout != "" && (!existed || preD.CurrentLayout != postD.CurrentLayout) {
			events = append(events, LayoutChanged(id, postD.CurrentLayout))
		}
	}

	for id := range pre.Windows {
		if _, stillPresent := post.Windows[id]; !stillPresent {
			events = append(events, WindowDestroyed(id))
		}
	}

	for id, postW := range post.Windows {
		preProps, existed := pre.Windows[id]
		if !existed {
			continue
		}
		if preProps != postW.Properties {
			events = append(events, WindowUpdated(postW.Info))
		}
	}

	return events
}

func equalUint32Ptr(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
