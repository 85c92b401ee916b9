package usecase

import (
	"context"
	"time"

	"github.com/tillware/posd/internal/metrics"
	"github.com/tillware/posd/internal/pricing/domain"
)

// pricingUseCaseWithMetrics decorates PricingUseCase with metrics instrumentation.
type pricingUseCaseWithMetrics struct {
	next    PricingUseCase
	metrics metrics.BusinessMetrics
}

// NewPricingUseCaseWithMetrics wraps a PricingUseCase with metrics recording.
func NewPricingUseCaseWithMetrics(useCase PricingUseCase, m metrics.BusinessMetrics) PricingUseCase {
	return &pricingUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Sync records metrics for sync operations, labelled by resolution mode.
func (p *pricingUseCaseWithMetrics) Sync(ctx context.Context) (*SyncResult, error) {
	start := time.Now()
	result, err := p.next.Sync(ctx)

	status := "error"
	if err == nil {
		status = string(result.Mode)
	}

	p.metrics.RecordOperation(ctx, "pricing", "sync", status)
	p.metrics.RecordDuration(ctx, "pricing", "sync", time.Since(start), status)

	return result, err
}

// Status records metrics for status operations.
func (p *pricingUseCaseWithMetrics) Status(ctx context.Context) (string, *domain.Counts, error) {
	start := time.Now()
	cursor, counts, err := p.next.Status(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pricing", "status", status)
	p.metrics.RecordDuration(ctx, "pricing", "status", time.Since(start), status)

	return cursor, counts, err
}

// ItemsForCustomer records metrics for effective-price lookups.
func (p *pricingUseCaseWithMetrics) ItemsForCustomer(
	ctx context.Context,
	customerID string,
) ([]domain.PriceItem, error) {
	start := time.Now()
	items, err := p.next.ItemsForCustomer(ctx, customerID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pricing", "items_for_customer", status)
	p.metrics.RecordDuration(ctx, "pricing", "items_for_customer", time.Since(start), status)

	return items, err
}
