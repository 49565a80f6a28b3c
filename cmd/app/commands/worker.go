package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pensionworks/pensync/internal/app"
	"github.com/pensionworks/pensync/internal/config"
)

// RunWorker starts the standalone sync scheduler process. It runs periodic
// full sync runs without serving HTTP traffic and blocks until receiving
// SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting sync worker", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	scheduler, err := container.Scheduler()
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler error: %w", err)
	}

	logger.Info("sync worker stopped")
	return nil
}
