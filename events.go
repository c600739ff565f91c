package cometd

import "sync"

// SessionEvent is the tagged variant broadcast by the orchestrator: either a
// MessageEvent carrying a batch of deliveries, or an ErrorEvent carrying a
// session failure.
type SessionEvent interface {
	isSessionEvent()
}

// MessageEvent carries an immutable, ordered batch of Deliveries produced by
// a single long-poll response.
type MessageEvent struct {
	Batch []Delivery
}

func (MessageEvent) isSessionEvent() {}

// ErrorEvent carries a session-level failure. An ErrorEvent raised while
// Running drives the orchestrator into Draining; one raised by a failed
// initial handshake ends it directly, and one raised by the final
// Disconnect is published while already Draining.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isSessionEvent() {}

// eventBus is the multi-producer/multi-consumer broadcast described in
// SPEC_FULL.md §4.E and §9: each call to Subscribe registers an independent
// buffered channel. Publish is non-blocking per subscriber: if a
// subscriber's buffer is full, its oldest buffered event is dropped to make
// room, so a slow consumer can never stall the orchestrator.
type eventBus struct {
	mu          sync.Mutex
	capacity    int
	subscribers []chan SessionEvent
	logger      Logger
	closed      bool
}

func newEventBus(capacity int, logger Logger) *eventBus {
	return &eventBus{capacity: capacity, logger: logger}
}

// Subscribe registers and returns a new receive-only channel that observes
// every subsequent Publish call in emission order.
func (b *eventBus) Subscribe() <-chan SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan SessionEvent, b.capacity)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish broadcasts ev to every current subscriber without blocking.
func (b *eventBus) Publish(ev SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging: drop the oldest buffered event to make
			// room rather than block the orchestrator indefinitely.
			select {
			case <-ch:
				b.logger.Warn("dropping oldest buffered event for a lagging subscriber")
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Close closes every subscriber channel, signalling that no further events
// will arrive. Safe to call once the orchestrator has fully drained.
func (b *eventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
}
