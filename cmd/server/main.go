package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	dmerrors "dm-lab/errors"
	"dm-lab/internal"
	"dm-lab/moderation"
	"dm-lab/observability"
	"dm-lab/repositories"
	"dm-lab/runtime"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"dm-lab/transport/rest"
	"dm-lab/transport/ws"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

//go:embed censored.txt
var censoredWords string

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// It ensures all 'defer' statements (like database cleanup) run before the
// program exits and keeps the initialization logic testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Core components
	registry := runtime.NewRegistry()
	monitor := observability.NewMonitor()
	router := runtime.NewRouter(logger, registry, monitor)

	words := lo.Filter(strings.Fields(censoredWords), func(w string, _ int) bool {
		return w != ""
	})
	if len(words) == 0 {
		return exitConfig, dmerrors.ErrEmptyWords
	}
	moderator, err := moderation.NewModerator(words, charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
	}
	logger.Info(fmt.Sprintf("%d censored words loaded", len(words)))

	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	searchRepository := repositories.NewSearchRepository(blugeWriter, logger, config.SearchLimit)
	userRepository := repositories.NewUserRepository(db)

	chatService := services.NewChatService(logger, messageRepository, searchRepository,
		router, registry, &moderator, monitor)
	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised workers: presence fan-out and heartbeat
	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewPresenceWorker(logger, registry, registry.Changed()),
		workers.NewHeartbeatWorker(logger, config.HeartbeatInterval, monitor, registry),
	)
	go func() {
		logger.Info("Starting supervised workers")
		sup.Run(ctx)
	}()

	// 6. HTTP server (REST + websocket upgrade)
	wsHandler := ws.NewHandler(logger, registry, chatService, monitor,
		config.ConnectionBufferSize, config.DeliveryTimeout)
	authHandler := rest.NewAuthHandler(logger, authService)
	messageHandler := rest.NewMessageHandler(logger, chatService, userRepository)
	server := rest.NewServer(logger, authHandler, messageHandler, wsHandler,
		monitor, registry, config.RequestsPerSecond)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Router()}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced HTTP shutdown", "error", err)
		_ = httpServer.Close()
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
