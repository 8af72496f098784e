package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"math/rand"
	"time"
)

var _ contract.Worker = (*SyntheticActivityWorker)(nil)

var syntheticUsers = []string{"Alice", "Bob", "Charlie", "Dave", "Emma"}

var cannedBodies = []string{
	"How's everyone doing?",
	"Great work on the project!",
	"Anyone free for a quick call?",
	"Just finished my tasks",
	"Coffee break time!",
	"Looking forward to the weekend",
	"New updates are ready",
}

// SyntheticActivityWorker keeps a demo deployment lively by injecting
// typing and message events. It is a plain client of the hub: it holds a
// session like any connection and only uses the public inbound contract.
type SyntheticActivityWorker struct {
	log          *slog.Logger
	hub          contract.IHub
	minInterval  time.Duration
	maxInterval  time.Duration
	typingChance float64
	rng          *rand.Rand
}

func NewSyntheticActivityWorker(
	log *slog.Logger,
	hub contract.IHub,
	minInterval, maxInterval time.Duration,
	typingChance float64,
) *SyntheticActivityWorker {
	return &SyntheticActivityWorker{
		log:          log,
		hub:          hub,
		minInterval:  minInterval,
		maxInterval:  maxInterval,
		typingChance: typingChance,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (w *SyntheticActivityWorker) Run(ctx context.Context) error {
	session := w.hub.Connect(discardSink{})
	defer w.hub.Disconnect(session)
	w.log.Info("Synthetic activity started", "session", string(session))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.nextInterval()):
		}

		if w.rng.Float64() >= w.typingChance {
			continue
		}

		user := syntheticUsers[w.rng.Intn(len(syntheticUsers))]
		w.hub.Dispatch(domain.TypingCommand{Origin: session, User: user})

		// Type for a little while before the message lands, like the
		// real thing.
		compose := 2*time.Second + time.Duration(w.rng.Int63n(int64(3*time.Second)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(compose):
		}

		w.hub.Dispatch(domain.SendMessageCommand{
			Origin:  session,
			User:    user,
			Content: cannedBodies[w.rng.Intn(len(cannedBodies))],
		})
	}
}

func (w *SyntheticActivityWorker) nextInterval() time.Duration {
	spread := w.maxInterval - w.minInterval
	if spread <= 0 {
		return w.minInterval
	}
	return w.minInterval + time.Duration(w.rng.Int63n(int64(spread)))
}

// discardSink ignores everything addressed to the synthetic session.
type discardSink struct{}

func (discardSink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}
