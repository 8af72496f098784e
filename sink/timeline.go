package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"sync"
)

// Timeline is a permanent sink keeping a bounded in-memory view of the
// latest stored messages. The debug dashboard reads it for its stats; it
// never feeds client-facing responses, those come from the store.
type Timeline struct {
	mu       sync.Mutex
	limit    int
	total    int64
	messages []domain.Message
}

func NewTimeline(limit int) *Timeline {
	return &Timeline{limit: limit}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	stored, ok := e.(event.MessageStored)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.messages = append(t.messages, stored.Message)
	if len(t.messages) > t.limit {
		t.messages = t.messages[len(t.messages)-t.limit:]
	}
	return nil
}

// Snapshot returns a copy of the retained window plus the total count
// observed since start.
func (t *Timeline) Snapshot() ([]domain.Message, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out, t.total
}
