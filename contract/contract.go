//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives outbound events on behalf of one destination,
// usually a live connection. Consume must return promptly; the ctx
// carries the delivery deadline.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	Sinks() map[domain.SessionID]EventSink
	Get(id domain.SessionID) (EventSink, bool)
	Subscribe(id domain.SessionID, sink EventSink)
	Unsubscribe(id domain.SessionID)
	Len() int
}

// IMessageStore is the durable, ordered, append-only message log.
type IMessageStore interface {
	Append(author, body, lang string) (domain.Message, error)
	Recent(n int) ([]domain.Message, error)
}

// IPresenceTracker owns the ephemeral typing state and its timers.
type IPresenceTracker interface {
	NotifyTyping(user string, origin domain.SessionID)
	Clear(user string)
	ClearSession(origin domain.SessionID)
	Stop()
}

// IHub is the complete inbound contract of the connection hub.
// Anything a client can do, a synthetic client can do through this.
type IHub interface {
	Connect(sink EventSink) domain.SessionID
	Disconnect(id domain.SessionID)
	Dispatch(cmd domain.Command)
}
