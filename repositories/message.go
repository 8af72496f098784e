package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const keyPrefix = "msg:"

// seekTail is lexicographically above every zero-padded id suffix.
const seekTail = "99999999999999999999"

// MessageStore persists the append-only message log in BadgerDB.
// The key is formatted as "msg:{id_padded}" with 20-digit zero padding so
// lexicographical order equals id order. Id assignment is serialized by the
// store mutex: an id is consumed only after its record is durably committed,
// which keeps the sequence gapless even when an append fails.
type MessageStore struct {
	db  *badger.DB
	log *slog.Logger

	mu     sync.Mutex
	nextID int64
	lastAt time.Time
}

func NewMessageStore(db *badger.DB, log *slog.Logger) (*MessageStore, error) {
	s := &MessageStore{db: db, log: log}
	if err := s.loadTail(); err != nil {
		return nil, fmt.Errorf("loading message log tail: %w", err)
	}
	return s, nil
}

// loadTail seeks the highest existing key to resume the id sequence and the
// timestamp floor after a restart.
func (s *MessageStore) loadTail() error {
	return s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(keyPrefix)
		it.Seek([]byte(keyPrefix + seekTail))
		if !it.ValidForPrefix(prefix) {
			return nil
		}

		item := it.Item()
		id, err := strconv.ParseInt(strings.TrimPrefix(string(item.Key()), keyPrefix), 10, 64)
		if err != nil {
			return err
		}
		var last domain.Message
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &last)
		}); err != nil {
			return err
		}
		s.nextID = id
		s.lastAt = last.CreatedAt
		return nil
	})
}

// Append assigns the next id and a fresh UTC timestamp, then commits the
// record. It reports success only after the write is durable; on failure the
// id is not consumed and nothing is visible to readers.
func (s *MessageStore) Append(author, body, lang string) (domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if strings.TrimSpace(author) == "" {
		author = domain.AnonymousAuthor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamps must never regress relative to already assigned ids,
	// even if the wall clock steps backwards.
	now := time.Now().UTC()
	if now.Before(s.lastAt) {
		now = s.lastAt
	}

	msg := domain.Message{
		ID:        s.nextID + 1,
		User:      author,
		Content:   body,
		Lang:      lang,
		CreatedAt: now,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg.ID), value)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	s.nextID = msg.ID
	s.lastAt = now
	return msg, nil
}

// Recent returns the n most recently appended messages in ascending id
// order. Fewer than n exist, all of them are returned.
func (s *MessageStore) Recent(n int) ([]domain.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	var raw [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek([]byte(keyPrefix + seekTail)); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == n {
				break
			}
			if err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var msg domain.Message
		if err := json.Unmarshal(b, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
		}
		messages = append(messages, msg)
	}
	// The reverse scan collected newest first.
	return lo.Reverse(messages), nil
}

// Empty reports whether no message has ever been appended.
func (s *MessageStore) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID == 0
}

func messageKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, id))
}
