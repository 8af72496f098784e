package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts domain events to every registered session sink
// plus the permanent in-process sinks (timeline, search index).
//
// Delivery is best-effort and bounded: each sink gets the delivery
// timeout, and a failing sink is evicted through the onDead callback so
// one dead connection never slows the rest again. Sinks are visited
// sequentially, which preserves per-connection event order.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      chan event.DomainEvent
	permanent   []contract.EventSink
	sinkTimeout time.Duration
	telemetry   chan<- event.Event
	onDead      func(domain.SessionID)
}

func NewEventFanout(
	log *slog.Logger,
	registry contract.IRegistry,
	events chan event.DomainEvent,
	permanent []contract.EventSink,
	sinkTimeout time.Duration,
	telemetry chan<- event.Event,
	onDead func(domain.SessionID),
) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		events:      events,
		permanent:   permanent,
		sinkTimeout: sinkTimeout,
		telemetry:   telemetry,
		onDead:      onDead,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to the permanent sinks and then to a
// snapshot of the registered sessions, honoring the event's exclusion.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanent {
		w.consume(ctx, sink, evt)
	}

	excluded := evt.Exclude()
	for id, sink := range w.registry.Sinks() {
		if id == excluded {
			continue
		}
		if err := w.consume(ctx, sink, evt); err != nil {
			w.log.Warn("Sink delivery failed, evicting session",
				"session", string(id), "error", err)
			w.emitEviction(id)
			if w.onDead != nil {
				w.onDead(id)
			}
		}
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) error {
	deliveryCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	return sink.Consume(deliveryCtx, evt)
}

func (w *EventFanout) emitEviction(id domain.SessionID) {
	if w.telemetry == nil {
		return
	}
	select {
	case w.telemetry <- event.Event{
		Type:    event.SinkEvictedType,
		Payload: event.SinkEvicted{Session: string(id)},
	}:
	default:
	}
}
