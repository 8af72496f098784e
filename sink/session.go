// Package sink provides EventSink implementations: the per-connection
// buffered sink and the permanent in-process sinks fed by the fanout.
package sink

import (
	"chat-relay/domain/event"
	"context"
	"sync"
)

// SessionSink buffers outbound events for one connection. Consume never
// blocks the fanout beyond the delivery context: when the buffer is full
// the event is dropped, which is the backpressure policy for slow readers.
type SessionSink struct {
	events chan event.DomainEvent

	mu     sync.Mutex
	closed bool
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fanout worker and by direct hub deliveries.
// The transport write loop drains the channel from the other side.
func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Buffer full: drop rather than stall the other subscribers.
		return nil
	}
}

// Events exposes the drain side for the transport write loop.
func (s *SessionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Close releases the write loop. Consume calls after Close are no-ops.
func (s *SessionSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
