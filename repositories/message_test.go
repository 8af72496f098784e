package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_Assigns_Sequential_Ids(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	// When three messages are appended
	first, err := store.Append("Alice", "Hey team, morning!", "")
	req.NoError(err)
	second, err := store.Append("Bob", "Morning Alice!", "")
	req.NoError(err)
	third, err := store.Append("Charlie", "Anyone up for lunch later?", "")
	req.NoError(err)

	// Then ids are gapless, starting at 1
	req.Equal(int64(1), first.ID)
	req.Equal(int64(2), second.ID)
	req.Equal(int64(3), third.ID)

	// And timestamps never regress with the id
	req.False(second.CreatedAt.Before(first.CreatedAt))
	req.False(third.CreatedAt.Before(second.CreatedAt))
}

func Test_Append_Concurrent_Ids_Are_Gapless(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)

	// When n concurrent appends race the id counter
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg, err := store.Append("Alice", fmt.Sprintf("message %d", i), "")
			require.NoError(t, err)
			ids <- msg.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	// Then the assigned set is exactly {1..n}
	seen := make(map[int64]bool, n)
	for id := range ids {
		req.False(seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	for i := int64(1); i <= n; i++ {
		req.True(seen[i], "id %d missing", i)
	}
}

func Test_Append_Empty_Body_Is_Rejected(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	_, err = store.Append("Alice", "   ", "")
	req.ErrorIs(err, errors.ErrEmptyMessage)
	req.True(store.Empty())
}

func Test_Append_Defaults_Anonymous_Author(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	msg, err := store.Append("", "hello", "")
	req.NoError(err)
	req.Equal(domain.AnonymousAuthor, msg.User)
}

func Test_Recent_Returns_Oldest_First(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	for i := 0; i < 8; i++ {
		_, err := store.Append("Bob", fmt.Sprintf("message %d", i), "")
		req.NoError(err)
	}

	// When asking for the last five
	messages, err := store.Recent(5)
	req.NoError(err)

	// Then exactly five come back, ascending, ending at the newest id
	req.Len(messages, 5)
	for i := 1; i < len(messages); i++ {
		req.Greater(messages[i].ID, messages[i-1].ID)
	}
	req.Equal(int64(8), messages[len(messages)-1].ID)
}

func Test_Recent_Fewer_Than_Requested(t *testing.T) {
	req := require.New(t)
	store, err := NewMessageStore(openTestDB(t), slog.Default())
	req.NoError(err)

	_, err = store.Append("Alice", "only one", "")
	req.NoError(err)

	messages, err := store.Recent(5)
	req.NoError(err)
	req.Len(messages, 1)

	empty, err := store.Recent(0)
	req.NoError(err)
	req.Empty(empty)
}

func Test_Sequence_Resumes_After_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	store, err := NewMessageStore(db, slog.Default())
	req.NoError(err)
	_, err = store.Append("Alice", "before restart", "")
	req.NoError(err)
	_, err = store.Append("Bob", "also before restart", "")
	req.NoError(err)
	req.NoError(db.Close())

	// When the store is reopened over the same files
	db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	reopened, err := NewMessageStore(db, slog.Default())
	req.NoError(err)

	// Then the id sequence continues without reuse
	msg, err := reopened.Append("Charlie", "after restart", "")
	req.NoError(err)
	req.Equal(int64(3), msg.ID)
}
