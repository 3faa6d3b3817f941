package ipc

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/kaedewm/yashiki/internal/event"
	"github.com/kaedewm/yashiki/internal/wire"
)

type fakeSnapshotProvider struct {
	snap event.StateEvent
}

func (f fakeSnapshotProvider) Snapshot() event.StateEvent { return f.snap }

func TestEventServerStreamsMatchingEvents(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "events.sock")
	b := NewBroadcaster()
	srv := NewEventServer(addr, b, fakeSnapshotProvider{})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("unix", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(conn)
	r := wire.NewReader(conn)
	if err := w.Encode(event.SubscribeRequest{Filter: event.Filter{Window: true}}); err != nil {
		t.Fatalf("encode subscribe: %v", err)
	}

	// Give the server a moment to register the subscription before
	// publishing, since Subscribe happens inside its own goroutine.
	time.Sleep(20 * time.Millisecond)
	b.Publish(event.WindowCreated(event.WindowInfo{ID: 7}))

	var got event.StateEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := r.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != event.KindWindowCreated || got.Window == nil || got.Window.ID != 7 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestEventServerSendsSnapshotWhenRequested(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "events.sock")
	b := NewBroadcaster()
	want := event.Snapshot(nil, nil, nil, 1, "byobu")
	srv := NewEventServer(addr, b, fakeSnapshotProvider{snap: want})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("unix", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(conn)
	r := wire.NewReader(conn)
	if err := w.Encode(event.SubscribeRequest{Snapshot: true}); err != nil {
		t.Fatalf("encode subscribe: %v", err)
	}

	var got event.StateEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := r.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != event.KindSnapshot || got.DefaultLayout == nil || *got.DefaultLayout != "byobu" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestEventServerUnsubscribesOnDisconnect(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "events.sock")
	b := NewBroadcaster()
	srv := NewEventServer(addr, b, fakeSnapshotProvider{})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Stop()

	conn, err := net.Dial("unix", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	w := wire.NewWriter(conn)
	if err := w.Encode(event.SubscribeRequest{Filter: event.Filter{Window: true}}); err != nil {
		t.Fatalf("encode subscribe: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	conn.Close()
	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	n := len(b.subscribers)
	b.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected the subscriber to be removed after disconnect, got %d remaining", n)
	}
}
