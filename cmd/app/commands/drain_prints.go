package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillware/posd/internal/app"
	"github.com/tillware/posd/internal/config"
)

// RunDrainPrints retries every print job in the persisted retry queue, in
// submission order. Jobs that fail again go back to the operator escalation
// path.
//
// Requirements: Database must be migrated and the print bridge reachable.
func RunDrainPrints(ctx context.Context) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("draining print retry queue")

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get print use case from container
	printUseCase, err := container.PrintUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize print use case: %w", err)
	}

	result, err := printUseCase.DrainQueued(ctx)
	if err != nil {
		return fmt.Errorf("failed to drain print queue: %w", err)
	}

	fmt.Printf("Print queue drained: %d printed, %d failed\n", result.Printed, result.Failed)

	logger.Info("print queue drained",
		slog.Int("printed", result.Printed),
		slog.Int("failed", result.Failed),
	)

	return nil
}
