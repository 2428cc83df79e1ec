package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markdave123-py/Docsense/internal/app"
	"github.com/markdave123-py/Docsense/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() { serverErr <- application.Server.Start() }()

	slog.Info("Docsense is running", "port", cfg.Port, "auth_mode", cfg.AuthMode)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			slog.Error("server error", "err", err)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	if err := application.Close(); err != nil {
		slog.Warn("close resources", "err", err)
	}
	slog.Info("shut down")
}
