package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillware/posd/internal/app"
	"github.com/tillware/posd/internal/config"
)

// RunSyncPricing refreshes the local pricing snapshot once. A terminal with
// no stored cursor performs a full sync; otherwise only deltas are fetched.
//
// Requirements: Database must be migrated and the remote system reachable.
func RunSyncPricing(ctx context.Context) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("refreshing pricing snapshot")

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get pricing use case from container
	pricingUseCase, err := container.PricingUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize pricing use case: %w", err)
	}

	result, err := pricingUseCase.Sync(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync pricing: %w", err)
	}

	fmt.Printf("Pricing sync completed: mode=%s cursor=%s\n", result.Mode, result.Cursor)

	logger.Info("pricing sync completed",
		slog.String("mode", string(result.Mode)),
		slog.String("cursor", result.Cursor),
	)

	return nil
}
