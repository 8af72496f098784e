package transport

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeEvent(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		description string
		input       event.DomainEvent
		wantEvent   string
		wantData    string
	}{
		{
			"Stored message becomes new_message",
			event.MessageStored{Message: domain.Message{ID: 7, User: "alice", Content: "hi", CreatedAt: at}},
			"new_message",
			`{"id":7,"user":"alice","message":"hi","timestamp":"2025-06-01T12:00:00Z"}`,
		},
		{
			"History becomes messages, oldest first",
			event.HistorySnapshot{Messages: []domain.Message{{ID: 1, User: "bob", Content: "first", CreatedAt: at}}},
			"messages",
			`[{"id":1,"user":"bob","message":"first","timestamp":"2025-06-01T12:00:00Z"}]`,
		},
		{
			"Empty history still sends an array",
			event.HistorySnapshot{},
			"messages",
			`[]`,
		},
		{
			"Typing start carries the bare user name",
			event.TypingStarted{User: "alice", Origin: "s1"},
			"user_typing",
			`"alice"`,
		},
		{
			"Typing stop carries the bare user name",
			event.TypingStopped{User: "alice"},
			"user_stop_typing",
			`"alice"`,
		},
		{
			"Rejection becomes an error frame with the bare reason",
			event.SendRejected{Origin: "s1", Reason: "message body is required"},
			"error",
			`"message body is required"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			frame, err := EncodeEvent(tt.input)
			req.NoError(err)

			var env Envelope
			req.NoError(json.Unmarshal(frame, &env))
			req.Equal(tt.wantEvent, env.Event)
			req.JSONEq(tt.wantData, string(env.Data))
		})
	}
}

func TestEncodeEvent_UnknownEventHasNoFrame(t *testing.T) {
	req := require.New(t)

	frame, err := EncodeEvent(nil)
	req.NoError(err)
	req.Nil(frame)
}
