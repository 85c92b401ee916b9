package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tillware/posd/internal/app"
	"github.com/tillware/posd/internal/config"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// RunListPending lists sales that have not yet reached the remote system,
// oldest first. Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunListPending(ctx context.Context, limit int, format string) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get queue use case from container
	queueUseCase, err := container.QueueUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize queue use case: %w", err)
	}

	sales, err := queueUseCase.GetPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list pending sales: %w", err)
	}

	// Output result based on format
	out := DefaultIO().Writer
	if format == "json" {
		outputPendingJSON(out, sales)
	} else {
		outputPendingText(out, sales)
	}

	return nil
}

// outputPendingText outputs the pending sales in human-readable text format.
func outputPendingText(w io.Writer, sales []*domain.QueuedSale) {
	if len(sales) == 0 {
		fmt.Fprintln(w, "No pending sales")
		return
	}

	fmt.Fprintf(w, "%-38s %-10s %-8s %-22s %s\n", "ID", "STATUS", "RETRIES", "CREATED", "LAST ERROR")
	for _, sale := range sales {
		lastError := ""
		if sale.LastError != nil {
			lastError = *sale.LastError
		}
		fmt.Fprintf(w, "%-38s %-10s %-8d %-22s %s\n",
			sale.ID,
			sale.Status,
			sale.RetryCount,
			sale.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			lastError,
		)
	}
	fmt.Fprintf(w, "\n%d pending sale(s)\n", len(sales))
}

// outputPendingJSON outputs the pending sales in JSON format for machine consumption.
func outputPendingJSON(w io.Writer, sales []*domain.QueuedSale) {
	type pendingSale struct {
		ID         string  `json:"id"`
		Status     string  `json:"status"`
		RetryCount int     `json:"retryCount"`
		CreatedAt  string  `json:"createdAt"`
		LastError  *string `json:"lastError,omitempty"`
	}

	result := make([]pendingSale, 0, len(sales))
	for _, sale := range sales {
		result = append(result, pendingSale{
			ID:         sale.ID.String(),
			Status:     string(sale.Status),
			RetryCount: sale.RetryCount,
			CreatedAt:  sale.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			LastError:  sale.LastError,
		})
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
