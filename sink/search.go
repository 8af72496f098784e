package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"
)

// SearchIndex is a permanent sink feeding a Bluge full-text index from
// stored-message events. The index is a derived view: losing it never
// loses messages, the badger log stays the source of truth.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(path string, log *slog.Logger) (*SearchIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &SearchIndex{writer: writer, log: log}, nil
}

func (s *SearchIndex) Consume(_ context.Context, e event.DomainEvent) error {
	stored, ok := e.(event.MessageStored)
	if !ok {
		return nil
	}
	return s.Index(stored.Message)
}

func (s *SearchIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(strconv.FormatInt(msg.ID, 10)).
		AddField(bluge.NewTextField("message", msg.Content).StoreValue()).
		AddField(bluge.NewTextField("user", msg.User).StoreValue()).
		AddField(bluge.NewStoredOnlyField("timestamp", []byte(msg.CreatedAt.Format(time.RFC3339Nano)))).
		AddField(bluge.NewStoredOnlyField("lang", []byte(msg.Lang)))

	if err := s.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("indexing message %d: %w", msg.ID, err)
	}
	return nil
}

// Search returns the best matches for a free-text query over message
// bodies, in relevance order.
func (s *SearchIndex) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader: %w", err)
	}
	defer reader.Close()

	request := bluge.NewTopNSearch(limit, bluge.NewMatchQuery(query).SetField("message"))
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var results []domain.Message
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("iterating matches: %w", err)
		}
		if match == nil {
			break
		}

		var msg domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				msg.ID, _ = strconv.ParseInt(string(value), 10, 64)
			case "message":
				msg.Content = string(value)
			case "user":
				msg.User = string(value)
			case "lang":
				msg.Lang = string(value)
			case "timestamp":
				msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, string(value))
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("reading stored fields: %w", err)
		}
		results = append(results, msg)
	}
	return results, nil
}

func (s *SearchIndex) Close() error {
	return s.writer.Close()
}
