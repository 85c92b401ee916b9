package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/metrics"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// queueUseCaseWithMetrics decorates QueueUseCase with metrics instrumentation.
type queueUseCaseWithMetrics struct {
	next    QueueUseCase
	metrics metrics.BusinessMetrics
}

// NewQueueUseCaseWithMetrics wraps a QueueUseCase with metrics recording.
func NewQueueUseCaseWithMetrics(useCase QueueUseCase, m metrics.BusinessMetrics) QueueUseCase {
	return &queueUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Enqueue records metrics for sale enqueue operations.
func (q *queueUseCaseWithMetrics) Enqueue(
	ctx context.Context,
	payload domain.SalePayload,
) (*domain.QueuedSale, error) {
	start := time.Now()
	sale, err := q.next.Enqueue(ctx, payload)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "enqueue", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "enqueue", time.Since(start), status)

	return sale, err
}

// Get records metrics for sale retrieval operations.
func (q *queueUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	start := time.Now()
	sale, err := q.next.Get(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "get", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "get", time.Since(start), status)

	return sale, err
}

// List records metrics for sale list operations.
func (q *queueUseCaseWithMetrics) List(
	ctx context.Context,
	saleStatus *domain.SaleStatus,
	offset, limit int,
) ([]*domain.QueuedSale, error) {
	start := time.Now()
	sales, err := q.next.List(ctx, saleStatus, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "list", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "list", time.Since(start), status)

	return sales, err
}

// GetPending records metrics for pending sale list operations.
func (q *queueUseCaseWithMetrics) GetPending(
	ctx context.Context,
	limit int,
) ([]*domain.QueuedSale, error) {
	start := time.Now()
	sales, err := q.next.GetPending(ctx, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "get_pending", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "get_pending", time.Since(start), status)

	return sales, err
}

// Counts records metrics for status count operations.
func (q *queueUseCaseWithMetrics) Counts(ctx context.Context) (map[domain.SaleStatus]int, error) {
	start := time.Now()
	counts, err := q.next.Counts(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "counts", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "counts", time.Since(start), status)

	return counts, err
}

// Remove records metrics for sale removal operations.
func (q *queueUseCaseWithMetrics) Remove(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := q.next.Remove(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	q.metrics.RecordOperation(ctx, "salesqueue", "remove", status)
	q.metrics.RecordDuration(ctx, "salesqueue", "remove", time.Since(start), status)

	return err
}
