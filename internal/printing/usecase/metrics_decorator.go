package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/metrics"
	"github.com/tillware/posd/internal/printing/domain"
)

// printUseCaseWithMetrics decorates PrintUseCase with metrics instrumentation.
type printUseCaseWithMetrics struct {
	next    PrintUseCase
	metrics metrics.BusinessMetrics
}

// NewPrintUseCaseWithMetrics wraps a PrintUseCase with metrics recording.
func NewPrintUseCaseWithMetrics(useCase PrintUseCase, m metrics.BusinessMetrics) PrintUseCase {
	return &printUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Submit records metrics for print submissions.
func (p *printUseCaseWithMetrics) Submit(
	ctx context.Context,
	order *domain.Order,
	jobType domain.JobType,
	format domain.JobFormat,
	copies int,
) (*domain.PrintJob, error) {
	start := time.Now()
	job, err := p.next.Submit(ctx, order, jobType, format, copies)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "printing", "submit", status)
	p.metrics.RecordDuration(ctx, "printing", "submit", time.Since(start), status)

	return job, err
}

// Retry records metrics for manual print retries.
func (p *printUseCaseWithMetrics) Retry(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	start := time.Now()
	job, err := p.next.Retry(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "printing", "retry", status)
	p.metrics.RecordDuration(ctx, "printing", "retry", time.Since(start), status)

	return job, err
}

// Resolve records metrics for operator escalation decisions, labelled by choice.
func (p *printUseCaseWithMetrics) Resolve(
	ctx context.Context,
	id uuid.UUID,
	choice ResolveChoice,
) (*domain.PrintJob, error) {
	start := time.Now()
	job, err := p.next.Resolve(ctx, id, choice)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "printing", "resolve_"+string(choice), status)
	p.metrics.RecordDuration(ctx, "printing", "resolve_"+string(choice), time.Since(start), status)

	return job, err
}

// DrainQueued records metrics for retry queue drains.
func (p *printUseCaseWithMetrics) DrainQueued(ctx context.Context) (*DrainResult, error) {
	start := time.Now()
	result, err := p.next.DrainQueued(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "printing", "drain", status)
	p.metrics.RecordDuration(ctx, "printing", "drain", time.Since(start), status)

	return result, err
}

// History passes through; reading the in-memory ring is not worth a metric.
func (p *printUseCaseWithMetrics) History() []*domain.PrintJob {
	return p.next.History()
}

// Queued records metrics for retry queue listings.
func (p *printUseCaseWithMetrics) Queued(ctx context.Context) ([]*domain.PrintJob, error) {
	start := time.Now()
	jobs, err := p.next.Queued(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "printing", "queued", status)
	p.metrics.RecordDuration(ctx, "printing", "queued", time.Since(start), status)

	return jobs, err
}

// Assignments passes through.
func (p *printUseCaseWithMetrics) Assignments() domain.RoleAssignments {
	return p.next.Assignments()
}
