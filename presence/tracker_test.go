package presence

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testTimeout = 50 * time.Millisecond

func collect(events <-chan event.DomainEvent, d time.Duration) []event.DomainEvent {
	deadline := time.After(d)
	var out []event.DomainEvent
	for {
		select {
		case e := <-events:
			out = append(out, e)
		case <-deadline:
			return out
		}
	}
}

func TestTracker_Typing_Then_Silence_Stops_Once(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), testTimeout, events)
	defer tracker.Stop()

	// When Alice types and then goes silent past the timeout
	tracker.NotifyTyping("Alice", "session-a")
	got := collect(events, 4*testTimeout)

	// Then exactly one started and one stopped event are emitted
	req.Len(got, 2)
	req.Equal(event.TypingStarted{User: "Alice", Origin: "session-a"}, got[0])
	req.Equal(event.TypingStopped{User: "Alice"}, got[1])
}

func TestTracker_Retyping_Resets_Without_Duplicate_Start(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), testTimeout, events)
	defer tracker.Stop()

	// When Alice keeps typing before each timeout elapses
	tracker.NotifyTyping("Alice", "session-a")
	for i := 0; i < 3; i++ {
		time.Sleep(testTimeout / 2)
		tracker.NotifyTyping("Alice", "session-a")
	}
	got := collect(events, 4*testTimeout)

	// Then no intermediate stop fired: one start, one final stop
	req.Len(got, 2)
	req.IsType(event.TypingStarted{}, got[0])
	req.IsType(event.TypingStopped{}, got[1])
}

func TestTracker_Two_Users_Are_Independent(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), testTimeout, events)
	defer tracker.Stop()

	tracker.NotifyTyping("Alice", "session-a")
	tracker.NotifyTyping("Bob", "session-b")

	got := collect(events, 4*testTimeout)
	req.Len(got, 4)

	var stopped []string
	for _, e := range got {
		if s, ok := e.(event.TypingStopped); ok {
			stopped = append(stopped, s.User)
		}
	}
	req.ElementsMatch([]string{"Alice", "Bob"}, stopped)
}

func TestTracker_Clear_Stops_Immediately(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), time.Minute, events)
	defer tracker.Stop()

	tracker.NotifyTyping("Alice", "session-a")
	tracker.Clear("Alice")

	got := collect(events, 50*time.Millisecond)
	req.Len(got, 2)
	req.Equal(event.TypingStopped{User: "Alice"}, got[1])

	// Clearing an idle user emits nothing
	tracker.Clear("Alice")
	req.Empty(collect(events, 50*time.Millisecond))
}

func TestTracker_ClearSession_Drops_Only_That_Sessions_Users(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), time.Minute, events)
	defer tracker.Stop()

	tracker.NotifyTyping("Alice", "session-a")
	tracker.NotifyTyping("Bob", "session-b")
	// Drain the two started events
	collect(events, 50*time.Millisecond)

	// When session-a disconnects
	tracker.ClearSession(domain.SessionID("session-a"))

	// Then only Alice is cleared
	got := collect(events, 50*time.Millisecond)
	req.Len(got, 1)
	req.Equal(event.TypingStopped{User: "Alice"}, got[0])
}

func TestTracker_Events_Stay_Ordered_When_Retyping_Races_Expiry(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 256)
	expiry := 5 * time.Millisecond
	tracker := NewTracker(slog.Default(), expiry, events)
	defer tracker.Stop()

	// When re-typing lands right on the expiry boundary, repeatedly
	for i := 0; i < 50; i++ {
		tracker.NotifyTyping("Alice", "session-a")
		time.Sleep(expiry)
	}
	got := collect(events, 10*expiry)

	// Then started and stopped events strictly alternate: a fresh start
	// is never followed by a stop belonging to the previous round
	wantStart := true
	for i, e := range got {
		switch e.(type) {
		case event.TypingStarted:
			req.True(wantStart, "event %d: started without a stop for the previous round", i)
			wantStart = false
		case event.TypingStopped:
			req.False(wantStart, "event %d: stopped with no open round", i)
			wantStart = true
		}
	}
}

func TestTracker_Stop_Emits_Nothing(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 16)
	tracker := NewTracker(slog.Default(), testTimeout, events)

	tracker.NotifyTyping("Alice", "session-a")
	collect(events, 10*time.Millisecond)
	tracker.Stop()

	req.Empty(collect(events, 3*testTimeout))
}
