// Package ipc exposes the daemon over two Unix-domain sockets: a
// command socket (request/response, one round trip per connection
// read) and an event socket (subscribe once, then stream StateEvents).
// Both use internal/wire's newline-delimited JSON framing. The
// accept-loop/per-connection-goroutine shape is grounded on the
// teacher's server.Server/acceptLoop (spec §4.8, §6.3).
package ipc

import (
	"sync"

	"github.com/gofrs/uuid"

	"github.com/kaedewm/yashiki/internal/diag"
	"github.com/kaedewm/yashiki/internal/event"
)

// subscriberBufferSize bounds how far a slow event-socket client can
// fall behind before newly published events start being dropped for it
// (mirroring the bounded-channel-with-lag-counter semantics of
// tokio::sync::broadcast, which the original daemon's event bus used).
const subscriberBufferSize = 128

type subscriber struct {
	id     uuid.UUID
	filter event.Filter
	ch     chan event.StateEvent
	lagged int
}

// Subscription is the handle an event-socket connection reads from.
type Subscription struct {
	ID uuid.UUID
	C  <-chan event.StateEvent
}

// Broadcaster fans StateEvents out to every subscriber whose filter
// matches, dropping events for subscribers that can't keep up rather
// than blocking the run loop that publishes them. It implements
// internal/runloop.EventSink.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[uuid.UUID]*subscriber)}
}

// Subscribe registers a new subscriber and returns its handle. Callers
// must Unsubscribe when the connection closes.
func (b *Broadcaster) Subscribe(filter event.Filter) Subscription {
	id, err := uuid.NewV4()
	if err != nil {
		// uuid.NewV4 only fails if the system CSPRNG is broken; fall
		// back to the nil UUID rather than panicking a live daemon.
		id = uuid.UUID{}
	}
	sub := &subscriber{id: id, filter: filter, ch: make(chan event.StateEvent, subscriberBufferSize)}
	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()
	return Subscription{ID: id, C: sub.ch}
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish implements runloop.EventSink: it delivers ev to every
// subscriber whose filter matches, non-blocking. A subscriber whose
// buffer is full is skipped and its lag counter incremented; once it
// catches up the daemon logs how many events it missed.
func (b *Broadcaster) Publish(ev event.StateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		if !sub.filter.Matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
			if sub.lagged > 0 {
				diag.Warnf("ipc: subscriber %s caught up after lagging %d events", sub.id, sub.lagged)
				sub.lagged = 0
			}
		default:
			sub.lagged++
			diag.Warnf("ipc: subscriber %s lagged, %d events dropped so far", sub.id, sub.lagged)
		}
	}
}
