package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tillware/posd/internal/salesqueue/domain"
)

func TestRunListPending_InvalidLimit(t *testing.T) {
	err := RunListPending(context.Background(), 0, "text")

	require.Error(t, err)
	require.Contains(t, err.Error(), "limit must be a positive number")
}

func TestOutputPendingText(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		outputPendingText(&out, nil)

		require.Contains(t, out.String(), "No pending sales")
	})

	t.Run("with sales", func(t *testing.T) {
		lastError := "connection refused"
		sales := []*domain.QueuedSale{
			{
				ID:         uuid.MustParse("0198a9a0-0000-7000-8000-000000000001"),
				Status:     domain.SaleStatusQueued,
				RetryCount: 0,
				CreatedAt:  time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC),
			},
			{
				ID:         uuid.MustParse("0198a9a0-0000-7000-8000-000000000002"),
				Status:     domain.SaleStatusFailed,
				RetryCount: 3,
				LastError:  &lastError,
				CreatedAt:  time.Date(2026, 8, 12, 10, 31, 0, 0, time.UTC),
			},
		}

		var out bytes.Buffer
		outputPendingText(&out, sales)

		require.Contains(t, out.String(), "0198a9a0-0000-7000-8000-000000000001")
		require.Contains(t, out.String(), "queued")
		require.Contains(t, out.String(), "connection refused")
		require.Contains(t, out.String(), "2 pending sale(s)")
	})
}

func TestOutputPendingJSON(t *testing.T) {
	lastError := "upstream unavailable"
	sales := []*domain.QueuedSale{
		{
			ID:         uuid.MustParse("0198a9a0-0000-7000-8000-000000000003"),
			Status:     domain.SaleStatusFailed,
			RetryCount: 1,
			LastError:  &lastError,
			CreatedAt:  time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC),
		},
	}

	var out bytes.Buffer
	outputPendingJSON(&out, sales)

	require.Contains(t, out.String(), `"id": "0198a9a0-0000-7000-8000-000000000003"`)
	require.Contains(t, out.String(), `"status": "failed"`)
	require.Contains(t, out.String(), `"lastError": "upstream unavailable"`)
}
