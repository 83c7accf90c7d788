// Package bus fans timer lifecycle events out to any number of independent
// subscribers. Delivery is best-effort: each subscriber has its own bounded
// buffer, and when a buffer is full the oldest queued event for that
// subscriber is dropped so a slow reader never stalls the publisher or its
// peers.
package bus

import (
	"sync"

	"github.com/timeboxai/timebox/internal/models"
)

// DefaultBuffer is the per-subscriber queue depth used when Subscribe is
// called with a non-positive buffer size.
const DefaultBuffer = 64

// Bus broadcasts events to all active subscribers in publish order.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// Subscriber is one receiver's handle onto the bus. The channel returned by
// Events yields events in publish order until Close is called.
type Subscriber struct {
	bus *Bus
	ch  chan models.TimerEvent
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new receiver. There is no replay: the subscriber sees
// only events published after registration.
func (b *Bus) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscriber{bus: b, ch: make(chan models.TimerEvent, buffer)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers the event to every active subscriber without blocking.
// A subscriber whose buffer is full loses its oldest queued event, never the
// newest.
func (b *Bus) Publish(event models.TimerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// Events returns the receive side of the subscriber's queue. The channel is
// closed by Close.
func (s *Subscriber) Events() <-chan models.TimerEvent {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscriber) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s]; !ok {
		return
	}
	delete(s.bus.subs, s)
	close(s.ch)
}
