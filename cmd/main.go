package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"huddle/auth"
	"huddle/internal"
	"huddle/moderation"
	"huddle/repositories"
	"huddle/runtime"
	"huddle/runtime/workers"
	"huddle/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns the server lifecycle. Returning the
// error to main instead of exiting in place lets the deferred cleanups,
// the database close above all, always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components
	censor, err := moderation.Default(config.ModerationCharReplacement)
	if err != nil {
		return fmt.Errorf("moderation dictionary failed: %w", err)
	}

	sessions := runtime.NewSessionDirectory()
	groupStore := repositories.NewGroupRepository(db)
	hub := runtime.NewHub(
		log, sessions, runtime.NewGroupDirectory(groupStore),
		repositories.NewUserRepository(db), groupStore,
		repositories.NewMessageRepository(db, log),
		censor, config.HistoryLimit,
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised background workers
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewStorageGCWorker(log, db, config.StorageGCInterval),
		workers.NewTelemetryWorker(log, config.TelemetryInterval, func() int {
			return len(sessions.All())
		}),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP server with the websocket gateway
	tokens := auth.NewTokens(config.TokenSecret, config.TokenLifetime)
	mux := http.NewServeMux()
	mux.Handle("/chat", ws.NewGateway(log, hub, tokens))
	mux.Handle("/inspect", internal.NewInspectHandler(db, func() map[string]any {
		return map[string]any{
			"sessions": len(sessions.All()),
			"time":     time.Now().UTC().Format(time.RFC822),
		}
	}))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
