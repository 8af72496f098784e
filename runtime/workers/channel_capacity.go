package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*ChannelCapacityWorker)(nil)

// WatchedChannel samples one internal channel without exposing it.
type WatchedChannel struct {
	Name  string
	Usage func() (length, capacity int)
}

// ChannelCapacityWorker periodically reports the fill level of internal
// channels so backpressure shows up in telemetry before drops start.
type ChannelCapacityWorker struct {
	log       *slog.Logger
	interval  time.Duration
	telemetry chan<- event.Event
	watched   []WatchedChannel
}

func NewChannelCapacityWorker(
	log *slog.Logger,
	interval time.Duration,
	telemetry chan<- event.Event,
	watched []WatchedChannel,
) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:       log,
		interval:  interval,
		telemetry: telemetry,
		watched:   watched,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *ChannelCapacityWorker) sample() {
	for _, watched := range w.watched {
		length, capacity := watched.Usage()
		select {
		case w.telemetry <- event.Event{
			Type: event.ChannelCapacityType,
			Payload: event.ChannelCapacity{
				ChannelName: watched.Name,
				Capacity:    capacity,
				Length:      length,
			},
		}:
		default:
			w.log.Debug("Telemetry channel full, capacity sample lost")
		}
	}
}
