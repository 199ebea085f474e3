// Command solitaired serves solitaire sessions over websockets without a Nakama server.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solitaire/internal/config"
	"solitaire/internal/logging"
	"solitaire/internal/ports/ws"
)

const shutdownGrace = 10 * time.Second

func main() {
	logger, err := logging.New(getenv("SOLITAIRE_LOG_LEVEL", "info"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if path := os.Getenv("SOLITAIRE_CONFIG"); path != "" {
		if err := config.LoadGameConfig(path); err != nil {
			logger.Error("could not load %s: %v", path, err)
			os.Exit(1)
		}
	}
	cfg := config.GetGameConfig()

	secret := os.Getenv("SOLITAIRE_CHALLENGE_SECRET")
	if secret == "" {
		logger.Warn("SOLITAIRE_CHALLENGE_SECRET not set, deal challenges are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions inherit ctx, so a signal also closes hijacked websockets.
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           ws.NewServer(cfg, logger, secret).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: %v", err)
	}
	logger.Info("stopped")
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
