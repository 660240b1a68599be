package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-pulse/api"
	"chat-pulse/auth"
	"chat-pulse/infrastructure/ws"
	"chat-pulse/internal"
	"chat-pulse/moderation"
	"chat-pulse/observability"
	"chat-pulse/repositories"
	"chat-pulse/runtime"
	"chat-pulse/runtime/workers"
	"chat-pulse/search"
	"chat-pulse/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting so that every defer fires before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Storage (BadgerDB) & search index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()

	storage, err := repositories.NewBadgerStorage(db, log)
	if err != nil {
		return fmt.Errorf("storage setup failed: %w", err)
	}
	index := search.NewMessageIndex(writer, log)

	// 3. Moderation dictionary
	dict, err := moderation.LoadDictionary()
	if err != nil {
		return fmt.Errorf("dictionary loading failed: %w", err)
	}
	log.Info("Moderation dictionary loaded",
		"words", len(dict.Words), "languages", dict.Languages)

	moderator, err := moderation.NewModerator(dict.Words, censoredChar, log)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Services & runtime
	stats := observability.NewStats()
	presence := runtime.NewPresence()
	router := runtime.NewRouter(log, storage, presence, stats)
	issuer := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	accounts := services.NewAuthService(storage, issuer, log)
	chat := services.NewChatService(storage, &moderator, index, stats, log)

	media, err := api.NewMediaStore(config.MediaDir, log)
	if err != nil {
		return fmt.Errorf("media store setup failed: %w", err)
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log).Add(
		workers.NewStorySweeper(log, storage, config.StorySweepPeriod),
		workers.NewStatsReporter(log, stats, config.MetricInterval),
		internal.NewDebugServer(db, stats, fmt.Sprintf("%s:%d", config.Host, config.DebugPort), log),
	)
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. HTTP surface: websocket endpoint + REST API
	mux := http.NewServeMux()
	wsServer := ws.NewServer(accounts, chat, presence, router, stats, log)
	mux.HandleFunc("GET /ws", wsServer.HandleWS)
	api.NewServer(accounts, chat, storage, index, presence, router, media,
		api.NewJWTVerifier(issuer), log).Register(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: mux,
		// Sessions observe shutdown through the request context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
