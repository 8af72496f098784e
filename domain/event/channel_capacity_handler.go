package event

import (
	"chat-relay/errors"
	"log/slog"
)

// ChannelCapacityHandler consumes the periodic fill-level samples of the
// command and event channels. A channel running out of free slots means
// the hub or the fanout is falling behind and drop-on-full is close, so
// the handler escalates from debug to warning once the remaining room
// falls under the threshold.
type ChannelCapacityHandler struct {
	log       *slog.Logger
	threshold int
}

func NewChannelCapacityHandler(log *slog.Logger, lowCapacityThreshold int) *ChannelCapacityHandler {
	return &ChannelCapacityHandler{log: log, threshold: lowCapacityThreshold}
}

func (h *ChannelCapacityHandler) Handle(event Event) {
	if event.Type != ChannelCapacityType {
		return
	}
	payload, ok := event.Payload.(ChannelCapacity)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error())
		return
	}

	h.log.Debug("Channel usage sampled",
		"channel", payload.ChannelName,
		"length", payload.Length,
		"capacity", payload.Capacity,
	)
	if payload.Capacity <= 0 {
		// Unbuffered channels have no fill level to watch.
		return
	}
	remaining := payload.Capacity - payload.Length
	if remaining > 0 && remaining <= h.threshold {
		h.log.Warn("Channel nearly full, drops are imminent",
			"channel", payload.ChannelName,
			"remaining", remaining,
		)
	}
}
