package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.SessionID(uuid.NewString())
	sink := nopSink{}

	// Given no session is connected
	req.Zero(registry.Len())

	// When a session subscribes
	registry.Subscribe(id, sink)

	// Then it is part of the broadcast set
	req.Equal(1, registry.Len())
	got, ok := registry.Get(id)
	req.True(ok)
	req.Equal(sink, got)
	req.Contains(registry.Sinks(), id)
}

func TestRegistry_Subscribe_Multiple_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id1 := domain.SessionID(uuid.NewString())
	id2 := domain.SessionID(uuid.NewString())

	// When two sessions subscribe
	registry.Subscribe(id1, nopSink{})
	registry.Subscribe(id2, nopSink{})

	// Then both are broadcast targets
	req.Equal(2, registry.Len())
	sinks := registry.Sinks()
	req.Contains(sinks, id1)
	req.Contains(sinks, id2)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id1 := domain.SessionID(uuid.NewString())
	id2 := domain.SessionID(uuid.NewString())
	registry.Subscribe(id1, nopSink{})
	registry.Subscribe(id2, nopSink{})

	// When one session unsubscribes
	registry.Unsubscribe(id1)

	// Then only the other remains
	req.Equal(1, registry.Len())
	_, ok := registry.Get(id1)
	req.False(ok)
	req.Contains(registry.Sinks(), id2)
}

func TestRegistry_Sinks_Is_A_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.SessionID(uuid.NewString())
	registry.Subscribe(id, nopSink{})

	snapshot := registry.Sinks()
	registry.Unsubscribe(id)

	// The earlier snapshot is unaffected by later membership changes
	req.Contains(snapshot, id)
	req.Zero(registry.Len())
}
