package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tillware/posd/internal/database"
	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/client"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// SyncConfig holds sync engine configuration
type SyncConfig struct {
	Interval  time.Duration
	BatchSize int
	// SubmitsPerSecond throttles outbound submissions during a drain so a
	// large backlog does not hammer the remote system after an outage.
	SubmitsPerSecond float64
}

// SaleSubmitter submits a captured sale to the remote sales system.
type SaleSubmitter interface {
	Submit(ctx context.Context, id uuid.UUID, payload domain.SalePayload) (*client.SubmitResult, error)
}

// SyncEngine drains the sale queue against the remote sales system. Drains
// run on a timer, on enqueue triggers, and on demand; concurrent requests for
// a drain collapse into a single run.
type SyncEngine struct {
	config    SyncConfig
	txManager database.TxManager
	saleRepo  SaleRepository
	submitter SaleSubmitter
	group     singleflight.Group
	limiter   *rate.Limiter
	trigger   chan struct{}
	logger    *slog.Logger
}

// NewSyncEngine creates a new SyncEngine
func NewSyncEngine(
	config SyncConfig,
	txManager database.TxManager,
	saleRepo SaleRepository,
	submitter SaleSubmitter,
	logger *slog.Logger,
) *SyncEngine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.SubmitsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.SubmitsPerSecond), 1)
	}

	return &SyncEngine{
		config:    config,
		txManager: txManager,
		saleRepo:  saleRepo,
		submitter: submitter,
		limiter:   limiter,
		trigger:   make(chan struct{}, 1),
		logger:    logger,
	}
}

// Trigger requests a drain without blocking. A trigger while a drain is
// already pending is a no-op.
func (e *SyncEngine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Start runs the sync loop until the context is cancelled.
func (e *SyncEngine) Start(ctx context.Context) error {
	if e.logger != nil {
		e.logger.Info("starting sale sync engine",
			slog.Duration("interval", e.config.Interval),
			slog.Int("batch_size", e.config.BatchSize),
		)
	}

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if e.logger != nil {
				e.logger.Info("stopping sale sync engine")
			}
			return ctx.Err()
		case <-ticker.C:
			e.drain(ctx)
		case <-e.trigger:
			e.drain(ctx)
		}
	}
}

func (e *SyncEngine) drain(ctx context.Context) {
	if err := e.ProcessQueue(ctx); err != nil {
		if e.logger != nil {
			e.logger.Error("queue drain stopped", slog.Any("error", err))
		}
	}
}

// ProcessQueue submits pending sales in capture order. Concurrent callers
// share a single drain. One sale's failure never blocks the rest of the
// queue: failed and rejected sales are marked and the drain moves on. Only a
// local store failure or cancellation stops the drain.
func (e *SyncEngine) ProcessQueue(ctx context.Context) error {
	_, err, _ := e.group.Do("drain", func() (interface{}, error) {
		return nil, e.processQueue(ctx)
	})

	return err
}

func (e *SyncEngine) processQueue(ctx context.Context) error {
	sales, err := e.saleRepo.GetPending(ctx, e.config.BatchSize)
	if err != nil {
		return err
	}

	if len(sales) == 0 {
		return nil
	}

	if e.logger != nil {
		e.logger.Info("draining sale queue", slog.Int("count", len(sales)))
	}

	for _, sale := range sales {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		if _, err := e.submitByID(ctx, sale.ID); err != nil {
			if apperrors.Is(err, apperrors.ErrRetryable) ||
				apperrors.Is(err, apperrors.ErrRejected) ||
				apperrors.Is(err, apperrors.ErrConflict) ||
				apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return err
		}
	}

	return nil
}

// Retry re-attempts a single failed sale immediately. Rejected sales are
// refused: the remote system examined them and the same payload can never
// succeed.
func (e *SyncEngine) Retry(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	return e.submitByID(ctx, id)
}

// submitByID funnels every submission, drain and manual retry alike, through
// one singleflight key per sale, so the same sale is never in flight twice.
// The sale is re-read inside the flight: a concurrent caller that just
// finished the submission is observed, not repeated.
func (e *SyncEngine) submitByID(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	result, err, _ := e.group.Do("sale:"+id.String(), func() (interface{}, error) {
		sale, err := e.saleRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if sale.Status == domain.SaleStatusRejected {
			return nil, apperrors.Wrap(apperrors.ErrRejected, "sale was rejected by the remote system")
		}

		if err := e.submitOne(ctx, sale); err != nil {
			return sale, err
		}

		return sale, nil
	})

	sale, _ := result.(*domain.QueuedSale)
	return sale, err
}

// submitOne runs a single sale through the syncing transition, the remote
// submission, and the outcome transition. The sale is mutated in place so
// callers observe the final state.
func (e *SyncEngine) submitOne(ctx context.Context, sale *domain.QueuedSale) error {
	if !sale.Status.CanTransitionTo(domain.SaleStatusSyncing) {
		return apperrors.Wrap(apperrors.ErrConflict, "sale is not in a syncable state")
	}

	sale.Status = domain.SaleStatusSyncing
	if err := e.updateSale(ctx, sale); err != nil {
		return err
	}

	_, submitErr := e.submitter.Submit(ctx, sale.ID, sale.Payload)
	if submitErr == nil {
		now := time.Now().UTC()
		sale.Status = domain.SaleStatusSynced
		sale.SyncedAt = &now
		sale.LastError = nil

		if err := e.updateSale(ctx, sale); err != nil {
			return err
		}

		if e.logger != nil {
			e.logger.Info("sale synced", slog.String("sale_id", sale.ID.String()))
		}

		return nil
	}

	errMsg := submitErr.Error()
	sale.LastError = &errMsg

	if apperrors.Is(submitErr, apperrors.ErrRejected) {
		sale.Status = domain.SaleStatusRejected

		if e.logger != nil {
			e.logger.Warn("sale rejected by remote system",
				slog.String("sale_id", sale.ID.String()),
				slog.String("reason", errMsg),
			)
		}
	} else {
		sale.Status = domain.SaleStatusFailed
		sale.RetryCount++

		if e.logger != nil {
			e.logger.Error("sale submission failed",
				slog.String("sale_id", sale.ID.String()),
				slog.Int("retry_count", sale.RetryCount),
				slog.Any("error", submitErr),
			)
		}
	}

	if err := e.updateSale(ctx, sale); err != nil {
		return err
	}

	return submitErr
}

func (e *SyncEngine) updateSale(ctx context.Context, sale *domain.QueuedSale) error {
	return e.txManager.WithTx(ctx, func(ctx context.Context) error {
		return e.saleRepo.Update(ctx, sale)
	})
}
