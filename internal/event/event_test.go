package event

import "testing"

func TestFilterAllMatchesEverything(t *testing.T) {
	f := AllFilter()
	if !f.Window || !f.Focus || !f.Display || !f.Tags || !f.Layout {
		t.Fatalf("AllFilter did not set every category: %+v", f)
	}
}

func TestFilterMatchesOnlySelectedCategory(t *testing.T) {
	f := Filter{Window: true}
	if !f.Matches(WindowCreated(WindowInfo{ID: 1})) {
		t.Fatalf("expected window filter to match WindowCreated")
	}
	if !f.Matches(WindowDestroyed(1)) {
		t.Fatalf("expected window filter to match WindowDestroyed")
	}
	if f.Matches(WindowFocused(nil)) {
		t.Fatalf("window filter should not match a focus event")
	}
	if !f.Matches(Snapshot(nil, nil, nil, 1, "tatami")) {
		t.Fatalf("snapshot must always pass any filter")
	}
}

func TestEffectiveFilterDefaultsToAll(t *testing.T) {
	req := SubscribeRequest{}
	eff := req.EffectiveFilter()
	if !eff.Window || !eff.Focus {
		t.Fatalf("empty filter should default to all, got %+v", eff)
	}

	req = SubscribeRequest{Filter: Filter{Focus: true}}
	eff = req.EffectiveFilter()
	if eff.Window || !eff.Focus {
		t.Fatalf("explicit filter should be preserved, got %+v", eff)
	}
}

func TestDiffFocusAndFocusedDisplayDelta(t *testing.T) {
	id := uint32(5)
	pre := PreState{FocusedDisplay: 1}
	post := PostState{Focused: &id, FocusedDisplay: 2}

	events := Diff(pre, post)
	var sawFocus, sawDisplay bool
	for _, ev := range events {
		if ev.Type == KindWindowFocused {
			sawFocus = true
		}
		if ev.Type == KindDisplayFocused {
			sawDisplay = true
		}
	}
	if !sawFocus || !sawDisplay {
		t.Fatalf("expected both focus deltas, got %+v", events)
	}
}

func TestDiffLayoutChangedOnlyWhenNewLayoutSet(t *testing.T) {
	pre := PreState{Displays: map[uint32]DisplaySnapshot{1: {CurrentLayout: "tatami"}}}
	post := PostState{Displays: map[uint32]DisplaySnapshot{1: {CurrentLayout: ""}}}

	events := Diff(pre, post)
	for _, ev := range events {
		if ev.Type == KindLayoutChanged {
			t.Fatalf("layout-changed must not fire when the new layout is unset: %+v", events)
		}
	}
}

func TestDiffDetectsRemovedWindow(t *testing.T) {
	pre := PreState{Windows: map[uint32]WindowProperties{1: {Tags: 1}}}
	post := PostState{}

	events := Diff(pre, post)
	if len(events) != 1 || events[0].Type != KindWindowDestroyed || *events[0].WindowID != 1 {
		t.Fatalf("expected a single WindowDestroyed(1) event, got %+v", events)
	}
}

func TestDiffDetectsPropertyChange(t *testing.T) {
	pre := PreState{Windows: map[uint32]WindowProperties{1: {Tags: 1}}}
	post := PostState{Windows: map[uint32]WindowSnapshot{
		1: {Info: WindowInfo{ID: 1}, Properties: WindowProperties{Tags: 2}},
	}}

	events := Diff(pre, post)
	if len(events) != 1 || events[0].Type != KindWindowUpdated {
		t.Fatalf("expected a single WindowUpdated event, got %+v", events)
	}
}
