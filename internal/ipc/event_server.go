package ipc

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"

	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/event"
	"github.com/kaedewm/yashiki/internal/wire"
)

// SnapshotProvider answers a subscriber's initial snapshot request.
// internal/runloop.Loop satisfies this via Snapshot, which runs on the
// core goroutine so the returned StateEvent can't race a mutation.
type SnapshotProvider interface {
	Snapshot() event.StateEvent
}

// EventServer accepts connections on a Unix socket, each of which
// sends one SubscribeRequest and then only reads: every StateEvent the
// daemon publishes that matches the subscription's filter is streamed
// back as newline-delimited JSON until the client disconnects.
type EventServer struct {
	addr        string
	broadcaster *Broadcaster
	snapshots   SnapshotProvider
	listener    net.Listener
	quit        chan struct{}
	wg          sync.WaitGroup
}

func NewEventServer(addr string, b *Broadcaster, snapshots SnapshotProvider) *EventServer {
	return &EventServer{addr: addr, broadcaster: b, snapshots: snapshots, quit: make(chan struct{})}
}

func (s *EventServer) Start() error {
	if err := os.RemoveAll(s.addr); err != nil {
		return err
	}
	l, err := net.Listen("unix", s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *EventServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				diag.Warnf("ipc: event accept: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.serve(conn)
		}()
	}
}

func (s *EventServer) serve(conn net.Conn) {
	r := wire.NewReader(conn)
	var req event.SubscribeRequest
	if err := r.Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			diag.Debugf("ipc: subscribe decode: %v", err)
		}
		return
	}

	sub := s.broadcaster.Subscribe(req.EffectiveFilter())
	defer s.broadcaster.Unsubscribe(sub.ID)

	w := wire.NewWriter(conn)
	if req.Snapshot {
		if err := w.Encode(s.snapshots.Snapshot()); err != nil {
			return
		}
	}

	// The event socket is write-only from the daemon's perspective
	// after the initial subscribe line, but we still need to notice
	// when the client goes away; a blocked Read on a closed/reset
	// connection returns promptly, so drive it from its own goroutine
	// and use closedC to stop the publish loop.
	closedC := make(chan struct{})
	go func() {
		defer close(closedC)
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := w.Encode(ev); err != nil {
				return
			}
		case <-closedC:
			return
		case <-s.quit:
			return
		}
	}
}

// Stop closes the listener and waits for every in-flight connection's
// serve goroutine to return.
func (s *EventServer) Stop() error {
	close(s.quit)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	return err
}
