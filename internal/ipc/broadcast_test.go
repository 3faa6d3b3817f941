package ipc

import (
	"testing"

	"github.com/kaedewm/yashiki/internal/event"
)

func TestBroadcasterDeliversToMatchingSubscribersOnly(t *testing.T) {
	b := NewBroadcaster()
	windowOnly := b.Subscribe(event.Filter{Window: true})
	focusOnly := b.Subscribe(event.Filter{Focus: true})

	b.Publish(event.WindowCreated(event.WindowInfo{ID: 1}))

	select {
	case ev := <-windowOnly.C:
		if ev.Type != event.KindWindowCreated {
			t.Fatalf("expected window_created, got %q", ev.Type)
		}
	default:
		t.Fatal("expected the window subscriber to receive the event")
	}

	select {
	case ev := <-focusOnly.C:
		t.Fatalf("focus-only subscriber should not have received %v", ev)
	default:
	}
}

func TestBroadcasterSnapshotAlwaysMatches(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe(event.Filter{}) // no categories selected

	snap := event.Snapshot(nil, nil, nil, 1, "tatami")
	b.Publish(snap)

	select {
	case ev := <-sub.C:
		if ev.Type != event.KindSnapshot {
			t.Fatalf("expected a snapshot event, got %q", ev.Type)
		}
	default:
		t.Fatal("expected the snapshot to pass every filter")
	}
}

func TestBroadcasterDropsWhenSubscriberBufferFull(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe(event.Filter{Window: true})

	for i := 0; i < subscriberBufferSize+5; i++ {
		b.Publish(event.WindowCreated(event.WindowInfo{ID: uint32(i)}))
	}

	drained := 0
	for {
		select {
		case <-sub.C:
			drained++
			continue
		default:
		}
		break
	}
	if drained != subscriberBufferSize {
		t.Fatalf("expected exactly %d buffered events to survive, got %d", subscriberBufferSize, drained)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe(event.Filter{Window: true})
	b.Unsubscribe(sub.ID)

	_, ok := <-sub.C
	if ok {
		t.Fatal("expected the channel to be closed after unsubscribe")
	}
}
