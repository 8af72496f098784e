package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	index, err := NewSearchIndex(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestSearchIndex_FindsMessagesByBody(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openTestIndex(t)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	messages := []domain.Message{
		{ID: 1, User: "alice", Content: "the badger ate my lunch", CreatedAt: at},
		{ID: 2, User: "bob", Content: "weather is lovely today", CreatedAt: at},
		{ID: 3, User: "alice", Content: "lunch was great", CreatedAt: at},
	}
	for _, msg := range messages {
		req.NoError(index.Consume(ctx, event.MessageStored{Message: msg}))
	}

	found, err := index.Search(ctx, "lunch", 10)
	req.NoError(err)
	req.Len(found, 2)
	for _, msg := range found {
		req.Contains(msg.Content, "lunch")
	}
}

func TestSearchIndex_NoMatchesIsNotAnError(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openTestIndex(t)

	req.NoError(index.Consume(ctx, event.MessageStored{
		Message: domain.Message{ID: 1, User: "alice", Content: "hello"},
	}))

	found, err := index.Search(ctx, "absent", 10)
	req.NoError(err)
	req.Empty(found)
}

func TestSearchIndex_IgnoresNonMessageEvents(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openTestIndex(t)

	req.NoError(index.Consume(ctx, event.TypingStarted{User: "alice"}))

	found, err := index.Search(ctx, "alice", 10)
	req.NoError(err)
	req.Empty(found)
}
