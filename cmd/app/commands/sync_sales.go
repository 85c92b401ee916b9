package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillware/posd/internal/app"
	"github.com/tillware/posd/internal/config"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// RunSyncSales drains the sale queue to the remote system once and reports
// what is still waiting. Useful after restoring connectivity, without waiting
// for the next interval tick of a running server.
//
// Requirements: Database must be migrated and accessible.
func RunSyncSales(ctx context.Context) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("draining sale queue")

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get sync engine from container
	syncEngine, err := container.SyncEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize sync engine: %w", err)
	}

	if err := syncEngine.ProcessQueue(ctx); err != nil {
		return fmt.Errorf("failed to drain sale queue: %w", err)
	}

	// Report what is left in the queue after the pass
	queueUseCase, err := container.QueueUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize queue use case: %w", err)
	}

	counts, err := queueUseCase.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count queued sales: %w", err)
	}

	fmt.Printf("Sale queue drained: %d queued, %d failed, %d synced, %d rejected\n",
		counts[domain.SaleStatusQueued],
		counts[domain.SaleStatusFailed],
		counts[domain.SaleStatusSynced],
		counts[domain.SaleStatusRejected],
	)

	logger.Info("sale queue drained",
		slog.Int("queued", counts[domain.SaleStatusQueued]),
		slog.Int("failed", counts[domain.SaleStatusFailed]),
	)

	return nil
}
