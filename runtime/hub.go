// Package runtime orchestrates the connection hub: command intake, the
// durable append path, presence delegation, and event propagation. It
// contains no storage or transport details of its own.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// Hub routes inbound commands to the message store and the presence
// tracker, and feeds resulting events to the fanout pipeline. It is the
// only writer of the event channel for message traffic, so broadcast
// order always equals append order.
type Hub struct {
	log       *slog.Logger
	registry  contract.IRegistry
	store     contract.IMessageStore
	presence  contract.IPresenceTracker
	moderator *moderation.Moderator

	commands  chan domain.Command
	events    chan event.DomainEvent
	telemetry chan<- event.Event

	snapshotSize    int
	deliveryTimeout time.Duration
}

type HubOption func(*Hub)

// WithModerator enables word censoring on the append path.
func WithModerator(m *moderation.Moderator) HubOption {
	return func(h *Hub) {
		h.moderator = m
	}
}

// WithTelemetry attaches the technical event channel.
func WithTelemetry(telemetry chan<- event.Event) HubOption {
	return func(h *Hub) {
		h.telemetry = telemetry
	}
}

func NewHub(
	log *slog.Logger,
	registry contract.IRegistry,
	store contract.IMessageStore,
	presence contract.IPresenceTracker,
	events chan event.DomainEvent,
	bufferSize, snapshotSize int,
	deliveryTimeout time.Duration,
	opts ...HubOption,
) *Hub {
	h := &Hub{
		log:             log,
		registry:        registry,
		store:           store,
		presence:        presence,
		commands:        make(chan domain.Command, bufferSize),
		events:          events,
		snapshotSize:    snapshotSize,
		deliveryTimeout: deliveryTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connect registers a sink in the broadcast set and pushes the recent
// history snapshot to that sink only.
func (h *Hub) Connect(sink contract.EventSink) domain.SessionID {
	id := domain.SessionID(uuid.NewString())
	h.registry.Subscribe(id, sink)
	h.log.Info("Session connected", "session", string(id), "total", h.registry.Len())

	messages, err := h.store.Recent(h.snapshotSize)
	if err != nil {
		h.log.Error("History snapshot failed", "session", string(id), "error", err)
		h.deliver(sink, event.SendRejected{Origin: id, Reason: "history unavailable"})
		return id
	}
	h.deliver(sink, event.HistorySnapshot{Messages: messages})
	return id
}

// Disconnect removes the session from the broadcast set and clears any
// presence it owned. In-flight appends it originated still complete.
func (h *Hub) Disconnect(id domain.SessionID) {
	h.registry.Unsubscribe(id)
	h.presence.ClearSession(id)
	h.log.Info("Session disconnected", "session", string(id), "total", h.registry.Len())
}

// Dispatch queues an inbound command. The command channel is bounded;
// when intake outpaces processing the command is dropped and logged
// rather than blocking the caller's read loop.
func (h *Hub) Dispatch(cmd domain.Command) {
	select {
	case h.commands <- cmd:
	default:
		h.log.Warn(fmt.Sprintf("Command channel full, dropping command from session %s", cmd.Session()))
	}
}

// Run consumes the command channel. A single consumer keeps arrival
// order end to end: ids are assigned in the order commands were accepted
// and events leave in the same order.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Stopping hub")
			return ctx.Err()
		case cmd, ok := <-h.commands:
			if !ok {
				return nil
			}
			h.handle(ctx, cmd)
		}
	}
}

func (h *Hub) handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.SendMessageCommand:
		h.handleSend(ctx, c)
	case domain.TypingCommand:
		if strings.TrimSpace(c.User) == "" {
			return
		}
		h.presence.NotifyTyping(c.User, c.Origin)
	default:
		h.log.Warn(fmt.Sprintf("Unknown command %T", cmd))
	}
}

// handleSend is the append path: validate, censor, commit, broadcast.
// The event is emitted only after the store reported a durable commit,
// so no subscriber ever observes a message that is not in the log.
func (h *Hub) handleSend(ctx context.Context, c domain.SendMessageCommand) {
	body := strings.TrimSpace(c.Content)
	if body == "" {
		h.reject(c.Origin, "message body is required")
		return
	}
	if h.moderator != nil {
		body = h.moderator.Censor(body)
	}

	msg, err := h.store.Append(c.User, body, detectLang(body))
	if err != nil {
		h.log.Error("Append failed", "session", string(c.Origin), "error", err)
		h.reject(c.Origin, "message could not be stored")
		return
	}

	select {
	case h.events <- event.MessageStored{Message: msg}:
	case <-ctx.Done():
		return
	}
	h.emitTelemetry(event.Event{Type: event.MessageStoredType, Payload: msg.ID})
}

// reject notifies only the originating session; nothing is broadcast.
func (h *Hub) reject(origin domain.SessionID, reason string) {
	sink, ok := h.registry.Get(origin)
	if !ok {
		return
	}
	h.deliver(sink, event.SendRejected{Origin: origin, Reason: reason})
}

func (h *Hub) deliver(sink contract.EventSink, e event.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.deliveryTimeout)
	defer cancel()
	if err := sink.Consume(ctx, e); err != nil {
		h.log.Warn("Direct delivery failed", "error", err)
	}
}

func (h *Hub) emitTelemetry(e event.Event) {
	if h.telemetry == nil {
		return
	}
	select {
	case h.telemetry <- e:
	default:
		h.log.Debug("Telemetry event lost")
	}
}

// CommandChannelUsage reports length and capacity of the command intake,
// sampled by the channel capacity worker.
func (h *Hub) CommandChannelUsage() (int, int) {
	return len(h.commands), cap(h.commands)
}

// detectLang tags a message body with an ISO 639-3 code when detection
// is confident enough to be useful, empty otherwise.
func detectLang(body string) string {
	info := whatlanggo.Detect(body)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
