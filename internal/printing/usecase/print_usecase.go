// Package usecase implements the print pipeline business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/tillware/posd/internal/database"
	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/printing/domain"
	appValidation "github.com/tillware/posd/internal/validation"
)

// drainBatchSize caps how many queued jobs a single drain picks up.
const drainBatchSize = 50

// PrintConfig holds print pipeline configuration
type PrintConfig struct {
	// MaxRetries is the automatic retry budget assigned to every new job.
	MaxRetries int
	// MaxCopies caps the copies accepted per submit.
	MaxCopies int
	// HistorySize is the length of the in-memory history ring.
	HistorySize int
	// PersistedHistorySize is the subset of history kept across restarts.
	PersistedHistorySize int
}

// PrintJobRepository defines print job repository operations
type PrintJobRepository interface {
	Create(ctx context.Context, job *domain.PrintJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error)
	ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.PrintJob, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.PrintJob, error)
	Update(ctx context.Context, job *domain.PrintJob) error
	Delete(ctx context.Context, id uuid.UUID) error
	Prune(ctx context.Context, keep int) error
}

// Renderer renders an order into a printable artifact.
type Renderer interface {
	Render(order *domain.Order, jobType domain.JobType, format domain.JobFormat) (string, error)
}

// Dispatcher sends one copy of an artifact to a device.
type Dispatcher interface {
	Print(ctx context.Context, deviceID, artifact string) error
}

// ResolveChoice is the operator's decision for a failed job.
type ResolveChoice string

const (
	// ResolveChoiceRetry re-dispatches the job immediately, under the same
	// retry budget as automatic retries.
	ResolveChoiceRetry ResolveChoice = "retry"
	// ResolveChoiceQueue defers the job to the persisted retry queue.
	ResolveChoiceQueue ResolveChoice = "queue"
	// ResolveChoiceSkip abandons the job. It stays visible in history.
	ResolveChoiceSkip ResolveChoice = "skip"
)

// DrainResult summarizes one pass over the persisted retry queue.
type DrainResult struct {
	Printed int
	Failed  int
}

// PrintUseCase defines the interface for print pipeline operations
type PrintUseCase interface {
	Submit(ctx context.Context, order *domain.Order, jobType domain.JobType,
		format domain.JobFormat, copies int) (*domain.PrintJob, error)
	Retry(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error)
	Resolve(ctx context.Context, id uuid.UUID, choice ResolveChoice) (*domain.PrintJob, error)
	DrainQueued(ctx context.Context) (*DrainResult, error)
	History() []*domain.PrintJob
	Queued(ctx context.Context) ([]*domain.PrintJob, error)
	Assignments() domain.RoleAssignments
}

// PrintManager owns the print pipeline: rendering, dispatch, bounded retry
// and the operator escalation path. There is one physical pipeline per
// terminal, so dispatches are serialized.
type PrintManager struct {
	config      PrintConfig
	txManager   database.TxManager
	jobRepo     PrintJobRepository
	renderer    Renderer
	dispatcher  Dispatcher
	assignments domain.RoleAssignments
	group       singleflight.Group
	pipelineMu  sync.Mutex
	historyMu   sync.Mutex
	history     []*domain.PrintJob
	logger      *slog.Logger
}

// NewPrintManager creates a new PrintManager
func NewPrintManager(
	config PrintConfig,
	txManager database.TxManager,
	jobRepo PrintJobRepository,
	renderer Renderer,
	dispatcher Dispatcher,
	assignments domain.RoleAssignments,
	logger *slog.Logger,
) *PrintManager {
	return &PrintManager{
		config:      config,
		txManager:   txManager,
		jobRepo:     jobRepo,
		renderer:    renderer,
		dispatcher:  dispatcher,
		assignments: assignments,
		logger:      logger,
	}
}

// LoadHistory seeds the in-memory history ring from the persisted subset.
// Called once at startup, before the pipeline accepts work.
func (m *PrintManager) LoadHistory(ctx context.Context) error {
	jobs, err := m.jobRepo.ListRecent(ctx, m.config.PersistedHistorySize)
	if err != nil {
		return err
	}

	m.historyMu.Lock()
	defer m.historyMu.Unlock()
	m.history = jobs

	return nil
}

// Submit renders the order once, resolves the assigned device and runs the
// job through the pipeline. Rendering and device resolution fail fast; a
// dispatch failure returns the failed job alongside the error so the caller
// can offer the operator escalation choices.
func (m *PrintManager) Submit(
	ctx context.Context,
	order *domain.Order,
	jobType domain.JobType,
	format domain.JobFormat,
	copies int,
) (*domain.PrintJob, error) {
	if copies < 1 || copies > m.config.MaxCopies {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
			fmt.Sprintf("copies must be between 1 and %d", m.config.MaxCopies))
	}

	if err := appValidation.WrapValidationError(order.Validate()); err != nil {
		return nil, err
	}

	device, ok := m.assignments.DeviceFor(jobType)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNoPrinterAssigned,
			fmt.Sprintf("no device assigned for %s jobs", jobType))
	}

	artifact, err := m.renderer.Render(order, jobType, format)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &domain.PrintJob{
		ID:          uuid.Must(uuid.NewV7()),
		OrderID:     order.ID,
		OrderNumber: order.Number,
		JobType:     jobType,
		Format:      format,
		Status:      domain.JobStatusPending,
		MaxRetries:  m.config.MaxRetries,
		DeviceID:    device,
		Artifact:    artifact,
		Copies:      copies,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		return m.jobRepo.Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	m.recordHistory(job)

	if m.logger != nil {
		m.logger.Info("print job submitted",
			slog.String("job_id", job.ID.String()),
			slog.String("order_number", job.OrderNumber),
			slog.String("job_type", string(job.JobType)),
			slog.String("device_id", job.DeviceID),
			slog.Int("copies", job.Copies),
		)
	}

	if err := m.dispatch(ctx, job); err != nil {
		return job, err
	}

	return job, nil
}

// Retry re-dispatches a failed job. The retry budget is checked first: once
// retryCount reaches maxRetries the job needs an explicit operator decision
// instead. The count is incremented before the dispatch so a crash mid-print
// can never grant extra attempts.
func (m *PrintManager) Retry(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	result, err, _ := m.group.Do("job:"+id.String(), func() (interface{}, error) {
		job, err := m.jobRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if job.Status != domain.JobStatusFailed {
			return nil, apperrors.Wrap(apperrors.ErrConflict, "print job is not awaiting retry")
		}

		if !job.CanRetry() {
			return nil, apperrors.Wrap(apperrors.ErrRetryExhausted,
				fmt.Sprintf("print job has used all %d retry attempts", job.MaxRetries))
		}

		job.RetryCount++
		if err := m.updateJob(ctx, job); err != nil {
			return nil, err
		}

		if err := m.dispatch(ctx, job); err != nil {
			return job, err
		}

		return job, nil
	})

	job, _ := result.(*domain.PrintJob)
	return job, err
}

// Resolve applies the operator's escalation decision to a failed job.
func (m *PrintManager) Resolve(
	ctx context.Context,
	id uuid.UUID,
	choice ResolveChoice,
) (*domain.PrintJob, error) {
	switch choice {
	case ResolveChoiceRetry:
		return m.Retry(ctx, id)
	case ResolveChoiceQueue:
		return m.moveTo(ctx, id, domain.JobStatusQueued)
	case ResolveChoiceSkip:
		return m.moveTo(ctx, id, domain.JobStatusAbandoned)
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
			fmt.Sprintf("unknown resolve choice %q", choice))
	}
}

// moveTo transitions a failed job to an escalation outcome state.
func (m *PrintManager) moveTo(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
) (*domain.PrintJob, error) {
	var job *domain.PrintJob

	err := m.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		job, err = m.jobRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if !job.Status.CanTransitionTo(status) {
			return apperrors.Wrap(apperrors.ErrConflict,
				fmt.Sprintf("print job cannot move from %s to %s", job.Status, status))
		}

		job.Status = status
		return m.jobRepo.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	m.recordHistory(job)

	if m.logger != nil {
		m.logger.Info("print job resolved",
			slog.String("job_id", job.ID.String()),
			slog.String("status", string(job.Status)),
		)
	}

	return job, nil
}

// DrainQueued attempts every job in the persisted retry queue. Concurrent
// callers share a single drain. A job that fails again returns to the failed
// state and the operator's escalation view; one job's failure never stops the
// rest of the drain.
func (m *PrintManager) DrainQueued(ctx context.Context) (*DrainResult, error) {
	result, err, _ := m.group.Do("drain", func() (interface{}, error) {
		jobs, err := m.jobRepo.ListByStatus(ctx, domain.JobStatusQueued, drainBatchSize)
		if err != nil {
			return nil, err
		}

		drain := &DrainResult{}
		for _, job := range jobs {
			if err := m.dispatch(ctx, job); err != nil {
				if apperrors.Is(err, apperrors.ErrRetryable) || apperrors.Is(err, apperrors.ErrConflict) {
					drain.Failed++
					continue
				}
				return drain, err
			}
			drain.Printed++
		}

		return drain, nil
	})

	drain, _ := result.(*DrainResult)
	return drain, err
}

// History returns the in-memory job history, newest first.
func (m *PrintManager) History() []*domain.PrintJob {
	m.historyMu.Lock()
	defer m.historyMu.Unlock()

	jobs := make([]*domain.PrintJob, len(m.history))
	copy(jobs, m.history)
	return jobs
}

// Queued lists the persisted retry queue, oldest first.
func (m *PrintManager) Queued(ctx context.Context) ([]*domain.PrintJob, error) {
	return m.jobRepo.ListByStatus(ctx, domain.JobStatusQueued, drainBatchSize)
}

// Assignments returns the operator-configured role-to-device mapping.
func (m *PrintManager) Assignments() domain.RoleAssignments {
	return m.assignments
}

// dispatch runs a job through the printing transition and the device calls.
// Dispatches are serialized: the terminal drives one physical pipeline. All
// copies must print for the job to succeed; there is no partial success.
func (m *PrintManager) dispatch(ctx context.Context, job *domain.PrintJob) error {
	m.pipelineMu.Lock()
	defer m.pipelineMu.Unlock()

	if !job.Status.CanTransitionTo(domain.JobStatusPrinting) {
		return apperrors.Wrap(apperrors.ErrConflict, "print job is not in a printable state")
	}

	job.Status = domain.JobStatusPrinting
	if err := m.updateJob(ctx, job); err != nil {
		return err
	}
	m.recordHistory(job)

	for copyIndex := 0; copyIndex < job.Copies; copyIndex++ {
		if printErr := m.dispatcher.Print(ctx, job.DeviceID, job.Artifact); printErr != nil {
			errMsg := printErr.Error()
			job.Status = domain.JobStatusFailed
			job.Error = &errMsg

			if err := m.updateJob(ctx, job); err != nil {
				return err
			}
			m.recordHistory(job)

			if m.logger != nil {
				m.logger.Error("print dispatch failed",
					slog.String("job_id", job.ID.String()),
					slog.String("device_id", job.DeviceID),
					slog.Int("retry_count", job.RetryCount),
					slog.Any("error", printErr),
				)
			}

			return printErr
		}
	}

	job.Status = domain.JobStatusSuccess
	job.Error = nil

	if err := m.updateJob(ctx, job); err != nil {
		return err
	}
	m.recordHistory(job)

	if m.logger != nil {
		m.logger.Info("print job completed",
			slog.String("job_id", job.ID.String()),
			slog.String("order_number", job.OrderNumber),
		)
	}

	return nil
}

// updateJob persists the job and, once it reaches a terminal state, trims the
// persisted history down to the configured retention.
func (m *PrintManager) updateJob(ctx context.Context, job *domain.PrintJob) error {
	return m.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := m.jobRepo.Update(ctx, job); err != nil {
			return err
		}

		if job.Status.IsTerminal() {
			return m.jobRepo.Prune(ctx, m.config.PersistedHistorySize)
		}

		return nil
	})
}

// recordHistory upserts a snapshot of the job into the in-memory ring.
func (m *PrintManager) recordHistory(job *domain.PrintJob) {
	snapshot := *job

	m.historyMu.Lock()
	defer m.historyMu.Unlock()

	for i, existing := range m.history {
		if existing.ID == job.ID {
			m.history[i] = &snapshot
			return
		}
	}

	m.history = append([]*domain.PrintJob{&snapshot}, m.history...)
	if len(m.history) > m.config.HistorySize {
		m.history = m.history[:m.config.HistorySize]
	}
}
