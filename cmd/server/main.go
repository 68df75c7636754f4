package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dm-relay/auth"
	"dm-relay/moderation"
	"dm-relay/repositories"
	"dm-relay/runtime"
	"dm-relay/runtime/workers"
	"dm-relay/services"
	"dm-relay/ws"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning the error to main (instead of os.Exit inside) guarantees every
// defer runs, so the database and index always close cleanly.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB) & search index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.IndexFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Repositories
	messageRepository, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		return fmt.Errorf("message repository: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()

	userRepository, err := repositories.NewUserRepository(db, index, log)
	if err != nil {
		return fmt.Errorf("user repository: %w", err)
	}
	defer func() { _ = userRepository.Close() }()

	// 4. Moderation
	var moderator *moderation.Moderator
	if config.ModerationEnabled {
		censored, err := moderation.LoadEmbedded()
		if err != nil {
			return fmt.Errorf("loading word lists: %w", err)
		}
		m, err := moderation.NewModerator(censored.Words, config.ModerationCharReplacement)
		if err != nil {
			return fmt.Errorf("building moderator: %w", err)
		}
		moderator = &m
		log.Info("Moderation enabled", "words", len(censored.Words), "languages", censored.Languages)
	}

	// 5. Relay core
	registry := runtime.NewRegistry()
	chatService := services.NewChatService(userRepository, messageRepository,
		registry, moderator, log, config.DeliveryTimeout)
	authService := services.NewAuthService(userRepository, config.TokenDuration)
	userService := services.NewUserService(userRepository)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewHeartbeatWorker(log, registry, config.HeartbeatInterval),
		workers.NewStoreGCWorker(db, log, config.GCInterval),
	)
	go sup.Run(ctx)

	// 8. Transport
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := ws.NewServer(address, auth.NewVerifier(),
		authService, userService, chatService, registry, log)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "address", address, "at", time.Now().UTC())
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

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
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn("Shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
