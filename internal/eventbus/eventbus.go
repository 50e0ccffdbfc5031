// Package eventbus fans order lifecycle events out to in-process
// subscribers such as the debug log tap.
package eventbus

import (
	"sync"

	"github.com/kilianp07/cargo-agent/core/events"
)

// EventBus delivers order lifecycle events to all current subscribers.
type EventBus interface {
	Publish(events.OrderEvent)
	Subscribe() <-chan events.OrderEvent
	Unsubscribe(<-chan events.OrderEvent)
	Close()
}

// Bus is the channel-based EventBus used by the agent. Publishing never
// blocks: a subscriber that stops draining loses events instead of stalling
// the dispatch pipeline.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan events.OrderEvent
	closed bool
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

// Publish delivers the event to every subscriber that has buffer room.
func (b *Bus) Publish(e events.OrderEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The channel is closed by
// Unsubscribe or Close; on a closed bus it is returned already closed.
func (b *Bus) Subscribe() <-chan events.OrderEvent {
	ch := make(chan events.OrderEvent, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan events.OrderEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
