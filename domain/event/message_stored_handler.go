package event

import (
	"chat-relay/errors"
	"log/slog"
)

// MessageStoredHandler counts durably appended messages.
// Useful for observability metrics and the debug dashboard.
type MessageStoredHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewMessageStoredHandler(log *slog.Logger, counter *Counter) *MessageStoredHandler {
	return &MessageStoredHandler{log: log, counter: counter}
}

func (h *MessageStoredHandler) Handle(event Event) {
	switch event.Type {
	case MessageStoredType:
		if _, ok := event.Payload.(int64); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(MessageStoredType)
	}
}
