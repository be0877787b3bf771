package main

import (
	"context"
	"direct-chat/auth"
	"direct-chat/internal"
	"direct-chat/moderation"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/runtime/workers"
	"direct-chat/services"
	"direct-chat/transport"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
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
// Returning an error instead of exiting lets every deferred cleanup run.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

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

	// 3. Repositories
	userRepository, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}
	defer func() { _ = userRepository.Close() }()
	chatRepository, err := repositories.NewChatRepository(db)
	if err != nil {
		return err
	}
	defer func() { _ = chatRepository.Close() }()
	messageRepository, err := repositories.NewMessageRepository(db, log, config.LimitMessages)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()
	contactRepository := repositories.NewContactRepository(db)

	// Banned words are loaded once, restart to pick up new ones
	bannedWords, err := repositories.NewBlacklistRepository(db).Words()
	if err != nil {
		return fmt.Errorf("loading banned words: %w", err)
	}
	moderator, err := moderation.NewModerator(bannedWords, config.ModerationCharReplacement, log)
	if err != nil {
		return fmt.Errorf("building moderator: %w", err)
	}
	log.Info("Moderation ready", "banned_words", len(bannedWords))

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	broker := runtime.NewBroker(log, registry, runtime.NewChannelAuthorizer(chatRepository),
		config.BufferSize, config.NumberOfWorkers)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, broker, config.SinkTimeout)

	// 5. Services
	contactService := services.NewContactService(log, userRepository, contactRepository)
	chatService := services.NewChatService(log, userRepository, contactRepository, chatRepository, messageRepository, broker)
	messageService := services.NewMessageService(log, userRepository, chatRepository, messageRepository, moderator, broker)
	presenceService := services.NewPresenceService(log, userRepository, broker)
	homeService := services.NewHomeService(contactService, chatService, presenceService)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator.Start(ctx)
	defer orchestrator.Stop()

	// 7. HTTP & gRPC health servers
	tokens := auth.NewTokenManager(config.JWTSecret, config.JWTIssuer, config.AuthTokenDuration)
	server := transport.NewServer(log, tokens, transport.Services{
		Home:     homeService,
		Contacts: contactService,
		Chats:    chatService,
		Messages: messageService,
		Presence: presenceService,
	}, broker, transport.Settings{
		ConnectionBufferSize: config.ConnectionBufferSize,
		PingInterval:         config.PingInterval,
		WriteTimeout:         config.WriteTimeout,
		ReadLimit:            config.ReadLimit,
	})
	app := server.App()

	healthAddress := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
	healthListener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}
	health := transport.NewHealthServer(log)

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 2)
	go func() {
		if err := health.Serve(healthListener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		log.Error("Server failed, shutting down", "error", err)
	}

	// 9. Final Cleanup
	health.NotServing()
	if shutdownErr := app.ShutdownWithTimeout(config.ShutdownTimeout); shutdownErr != nil {
		log.Warn("HTTP shutdown incomplete", "error", shutdownErr)
	}
	health.Shutdown()
	log.Info("Program stopped cleanly")

	return err
}
