// Package transport carries the WebSocket wire protocol: envelope
// parsing on the way in, domain event encoding on the way out, and the
// per-connection pump lifecycle.
package transport

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"encoding/json"
	"fmt"
)

// Inbound event names.
const (
	EventSendMessage = "send_message"
	EventUserTyping  = "user_typing"
)

// Outbound event names.
const (
	EventMessages       = "messages"
	EventNewMessage     = "new_message"
	EventUserStopTyping = "user_stop_typing"
	EventError          = "error"
)

// Envelope is the frame every WebSocket message travels in, both
// directions: a name and an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload leaves the user optional: a nameless sender is
// stored under the anonymous default further down the pipeline.
type SendMessagePayload struct {
	User    string `json:"user" validate:"max=64"`
	Message string `json:"message" validate:"required,max=2000"`
}

type TypingPayload struct {
	User string `json:"user" validate:"required,max=64"`
}

// EncodeEvent turns a domain event into its outbound frame. A nil frame
// with a nil error means the event has no wire representation for this
// connection. Typing and error frames carry the bare string as their
// data, not an object.
func EncodeEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.HistorySnapshot:
		messages := evt.Messages
		if messages == nil {
			messages = []domain.Message{}
		}
		return encode(EventMessages, messages)
	case event.MessageStored:
		return encode(EventNewMessage, evt.Message)
	case event.TypingStarted:
		return encode(EventUserTyping, evt.User)
	case event.TypingStopped:
		return encode(EventUserStopTyping, evt.User)
	case event.SendRejected:
		return encode(EventError, evt.Reason)
	default:
		return nil, nil
	}
}

func encode(name string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	return json.Marshal(Envelope{Event: name, Data: payload})
}
