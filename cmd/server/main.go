package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/tone-row/resonance/ai"
	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/infrastructure/ws"
	"github.com/tone-row/resonance/repositories"
	"github.com/tone-row/resonance/runtime"
	"github.com/tone-row/resonance/runtime/workers"
	"github.com/tone-row/resonance/services"
	"github.com/tone-row/resonance/sink"
)

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
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. External generative services
	var negator contract.Negator
	var placer contract.Placer
	if config.AnthropicAPIKey == "" {
		log.Warn("ANTHROPIC_API_KEY not set, using mechanical negation and append-only narrative")
		negator, placer = ai.Disabled{}, ai.Disabled{}
	} else {
		client := ai.NewClient(config.AnthropicAPIKey, config.AIModel, config.AIMaxElapsed)
		negator, placer = client, client
	}

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	ratifier := workers.NewRatifier(log, negator, placer,
		config.NegationTimeout, config.PlacementTimeout)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, ratifier,
		config.MailboxSize, config.GracePeriod, config.SinkTimeout)

	sessionRepository := repositories.NewSessionRepository(db, log)
	orchestrator.AddSinks(sink.NewSnapshotSink(sessionRepository, log))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator.Start(ctx)
	defer orchestrator.Stop()

	// 6. Websocket server
	server := ws.NewServer(log, services.NewSessionService(orchestrator), config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	return server.ListenAndServe(ctx, address)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
