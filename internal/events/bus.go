package events

import (
	"sync"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

const subscriberBufferSize = 16

// Bus fans StartupEvents out to subscribers. It is the single notification
// channel for readiness and errors.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan StartupEvent
	next   int
	closed bool
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan StartupEvent)}
}

// Subscribe returns a channel of events published after the call, and a
// function that unsubscribes and closes it.
func (b *Bus) Subscribe() (<-chan StartupEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan StartupEvent, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers ev to every subscriber without blocking. A subscriber
// whose buffer is full misses the event.
func (b *Bus) Publish(ev StartupEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn("Events", "Subscriber %d is not keeping up, dropping %v", id, ev)
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
