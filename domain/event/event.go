package event

import (
	"chat-relay/domain"
)

// DomainEvent is delivered to connected sinks by the fanout worker.
// Exclude reports the session that must not receive the event,
// or an empty SessionID when everyone is a target.
type DomainEvent interface {
	Exclude() domain.SessionID
}

// MessageStored is emitted after a durable append.
// Every session receives it, the sender included, so the sender's view
// reflects the authoritative id and timestamp.
type MessageStored struct {
	Message domain.Message
}

func (MessageStored) Exclude() domain.SessionID {
	return ""
}

// TypingStarted is emitted on an Idle to Typing transition.
// The originator already knows it is typing and is excluded.
type TypingStarted struct {
	User   string
	Origin domain.SessionID
}

func (e TypingStarted) Exclude() domain.SessionID {
	return e.Origin
}

// TypingStopped is emitted when a presence entry expires or is cleared.
type TypingStopped struct {
	User string
}

func (TypingStopped) Exclude() domain.SessionID {
	return ""
}

// HistorySnapshot carries the recent history pushed to a freshly
// connected session. Delivered directly, never fanned out.
type HistorySnapshot struct {
	Messages []domain.Message
}

func (HistorySnapshot) Exclude() domain.SessionID {
	return ""
}

// SendRejected notifies the originating session that its message was not
// stored and therefore not broadcast. Delivered directly, never fanned out.
type SendRejected struct {
	Origin domain.SessionID
	Reason string
}

func (SendRejected) Exclude() domain.SessionID {
	return ""
}
