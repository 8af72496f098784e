package main

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/httpapi"
	"chat-relay/infrastructure/transport"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/presence"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// seedMessages populates a brand-new log so the first visitor never
// lands on an empty room.
var seedMessages = []struct{ user, body string }{
	{"Alice", "Hey team, morning!"},
	{"Bob", "Morning Alice!"},
	{"Charlie", "Anyone up for lunch later?"},
	{"Alice", "Count me in."},
	{"Bob", "Same here!"},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	// SyncWrites makes an acknowledged append survive a crash, not just
	// a process exit.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithSyncWrites(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	store, err := repositories.NewMessageStore(db, log)
	if err != nil {
		return fmt.Errorf("message store init failed: %w", err)
	}
	if store.Empty() {
		log.Info("Empty log, seeding sample history")
		for _, seed := range seedMessages {
			if _, err := store.Append(seed.user, seed.body, ""); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
		}
	}

	// 3. Search index (derived view, rebuilt from events)
	search, err := sink.NewSearchIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index init failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = search.Close()
	}()

	// 4. Moderation
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(censored.Words, replacement, log)
	if err != nil {
		return fmt.Errorf("moderator init failed: %w", err)
	}
	log.Info("Moderation ready",
		"words", len(censored.Words), "languages", strings.Join(censored.Languages, ","))

	// 5. Core pipeline: registry, presence, hub, fanout, telemetry
	events := make(chan event.DomainEvent, config.BufferSize)
	telemetry := make(chan event.Event, config.BufferSize)

	registry := runtime.NewRegistry()
	tracker := presence.NewTracker(log, config.TypingTimeout, events)
	defer tracker.Stop()

	hub := runtime.NewHub(
		log, registry, store, tracker,
		events, config.BufferSize, config.SnapshotSize, config.SinkTimeout,
		runtime.WithModerator(&moderator),
		runtime.WithTelemetry(telemetry),
	)

	timeline := sink.NewTimeline(config.SnapshotSize * 4)
	fanout := workers.NewEventFanout(
		log, registry, events,
		[]contract.EventSink{timeline, search},
		config.SinkTimeout, telemetry,
		hub.Disconnect,
	)

	counter := event.NewCounter()
	telemetryWorker := workers.NewTelemetryWorker(log, telemetry, []event.Handler{
		event.NewMessageStoredHandler(log, counter),
		event.NewWorkerRestartedAfterPanicHandler(log, counter),
		event.NewChannelCapacityHandler(log, config.LowCapacityThreshold),
	})

	capacityWorker := workers.NewChannelCapacityWorker(
		log, config.MetricInterval, telemetry,
		[]workers.WatchedChannel{
			{Name: "commands", Usage: hub.CommandChannelUsage},
			{Name: "events", Usage: func() (int, int) { return len(events), cap(events) }},
		},
	)
	healthWorker := workers.NewHealthWorker(log, config.MetricInterval, registry.Len)

	sup := workers.NewSupervisor(log, telemetry, config.RestartInterval)
	sup.Add(hub, fanout, telemetryWorker, capacityWorker, healthWorker)
	if config.SyntheticActivity {
		sup.Add(workers.NewSyntheticActivityWorker(
			log, hub,
			config.SyntheticMinPeriod, config.SyntheticMaxPeriod,
			config.SyntheticTypingOdds,
		))
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 7. HTTP surface: REST + WebSocket on one server
	chat := services.NewChatService(hub, store, search)
	wsHandler := transport.NewHandler(log, chat, config.ConnectionBufferSize)
	api := httpapi.NewServer(log, chat)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.Mux(wsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Debug dashboard over the raw keyspace
	internal.StartDebugServer(db, config.DebugPort, internal.MessageMapper, func() map[string]any {
		_, total := timeline.Snapshot()
		return map[string]any{
			"Sessions":       registry.Len(),
			"MessagesStored": counter.Get(event.MessageStoredType),
			"PanicRestarts":  counter.Get(event.RestartedAfterPanicType),
			"TimelineTotal":  total,
		}
	})
	log.Debug("Debug dashboard started", "port", config.DebugPort)

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
