package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("storefront exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("storefront service stopped")
}

// run blocks until SIGINT or SIGTERM, or until the server fails.
func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting storefront service",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.Bool("events_enabled", cfg.EventsEnabled),
	)

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
