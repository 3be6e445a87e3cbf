package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/cipherchat/internal/account"
	"github.com/Tyrowin/cipherchat/internal/auth"
	"github.com/Tyrowin/cipherchat/internal/config"
	"github.com/Tyrowin/cipherchat/internal/server"
	"github.com/Tyrowin/cipherchat/internal/store"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server error.
// Returning instead of exiting lets deferred cleanup close the database.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	db, err := store.Open(cfg.BadgerFilepath, cfg.BadgerInMemory, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AuthTokenDuration)
	accounts := account.NewService(store.NewUserRepository(db), issuer, log)
	hub := server.NewHub(cfg, log)
	srv := server.New(cfg, hub, accounts, issuer, log)
	httpServer := server.CreateServer(cfg.Address(), srv.Routes())

	if !cfg.RequireAuth {
		log.Warn("REQUIRE_AUTH is disabled: any client may connect under any username")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.StartServer(httpServer, log)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log); err != nil {
		log.Error("HTTP server did not shut down cleanly", "error", err)
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Error("Hub did not shut down cleanly", "error", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}
