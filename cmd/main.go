package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"noteboard/api"
	"noteboard/auth"
	"noteboard/domain"
	"noteboard/internal"
	"noteboard/repositories"
	"noteboard/services"
	"noteboard/sink"
	"noteboard/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	boardAddr, err := domain.ParseAddress(config.BoardAddress)
	if err != nil {
		return fmt.Errorf("BOARD_ADDRESS: %w", err)
	}
	owner, err := domain.ParseAddress(config.OwnerAddress)
	if err != nil {
		return fmt.Errorf("OWNER_ADDRESS: %w", err)
	}
	var initialFee *big.Int
	if config.InitialFee != nil {
		fee, ok := new(big.Int).SetString(*config.InitialFee, 10)
		if !ok || fee.Sign() < 0 {
			return fmt.Errorf("INITIAL_FEE must be a non-negative decimal, got %q", *config.InitialFee)
		}
		initialFee = fee
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Board wiring: token, repositories, sinks, service
	ledger := token.NewMemory()
	notes := repositories.NewNoteRepository(db, log)
	state := repositories.NewStateRepository(db)
	events := sink.NewRegistry(log, sink.NewLogSink(log), sink.NewMetricsSink())

	board, err := services.NewBoardService(log, ledger, notes, state, events, boardAddr, owner, initialFee)
	if err != nil {
		return fmt.Errorf("board setup failed: %w", err)
	}

	authenticator := auth.NewAuthenticator([]byte(config.AuthSigningKey), config.AuthTokenTTL)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: api.NewRouter(log, board, authenticator),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
