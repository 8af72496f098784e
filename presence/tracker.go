// Package presence owns the ephemeral typing state. Nothing here is
// persisted: an entry exists while a user is typing and disappears when
// its timer expires or the owning session disconnects.
package presence

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"log/slog"
	"sync"
	"time"
)

// DefaultTypingTimeout matches the auto-clear delay of the original system.
const DefaultTypingTimeout = 3 * time.Second

type entry struct {
	timer *time.Timer
	// gen invalidates a timer callback that lost the race against a
	// reset: the callback only expires the entry when generations match.
	gen    uint64
	origin domain.SessionID
}

// Tracker implements the two-state machine per user: Idle (no entry) and
// Typing (entry with a running timer). All transitions for a user are
// serialized by the tracker mutex.
type Tracker struct {
	log     *slog.Logger
	timeout time.Duration
	events  chan<- event.DomainEvent

	mu      sync.Mutex
	entries map[string]*entry
}

func NewTracker(log *slog.Logger, timeout time.Duration, events chan<- event.DomainEvent) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	return &Tracker{
		log:     log,
		timeout: timeout,
		events:  events,
		entries: make(map[string]*entry),
	}
}

// NotifyTyping moves a user to Typing. A repeated notification resets the
// running timer without a duplicate typing-started emission.
// The emission happens under the tracker mutex: emit never blocks, and
// holding the lock keeps event order identical to transition order, so
// observers can never see a started event overtaken by an older stop.
func (t *Tracker) NotifyTyping(user string, origin domain.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[user]; ok {
		e.gen++
		e.origin = origin
		e.timer.Stop()
		e.timer = t.startTimer(user, e.gen)
		return
	}
	e := &entry{origin: origin}
	e.timer = t.startTimer(user, 0)
	t.entries[user] = e

	t.emit(event.TypingStarted{User: user, Origin: origin})
}

// Clear moves a user to Idle immediately and emits typing-stopped.
func (t *Tracker) Clear(user string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[user]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(t.entries, user)
	t.emit(event.TypingStopped{User: user})
}

// ClearSession drops every entry whose latest typing event came from the
// given session. Called on disconnect so others don't watch a ghost type
// until the timeout elapses.
func (t *Tracker) ClearSession(origin domain.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for user, e := range t.entries {
		if e.origin == origin {
			e.timer.Stop()
			delete(t.entries, user)
			t.emit(event.TypingStopped{User: user})
		}
	}
}

// Stop cancels every timer without emitting. Shutdown only.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for user, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, user)
	}
}

func (t *Tracker) startTimer(user string, gen uint64) *time.Timer {
	return time.AfterFunc(t.timeout, func() {
		t.expire(user, gen)
	})
}

func (t *Tracker) expire(user string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[user]
	if !ok || e.gen != gen {
		// A newer typing event superseded this timer.
		return
	}
	delete(t.entries, user)
	t.emit(event.TypingStopped{User: user})
}

func (t *Tracker) emit(e event.DomainEvent) {
	select {
	case t.events <- e:
	default:
		t.log.Warn("Presence event channel full, dropping event")
	}
}
