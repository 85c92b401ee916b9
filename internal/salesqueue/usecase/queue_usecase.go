// Package usecase implements the sale queue business logic and the background sync engine.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/database"
	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/domain"
	appValidation "github.com/tillware/posd/internal/validation"
)

// SaleRepository defines queued sale repository operations
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.QueuedSale) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error)
	GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error)
	List(ctx context.Context, status *domain.SaleStatus, offset, limit int) ([]*domain.QueuedSale, error)
	Update(ctx context.Context, sale *domain.QueuedSale) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[domain.SaleStatus]int, error)
}

// QueueUseCase defines the interface for sale queue operations
type QueueUseCase interface {
	Enqueue(ctx context.Context, payload domain.SalePayload) (*domain.QueuedSale, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error)
	List(ctx context.Context, status *domain.SaleStatus, offset, limit int) ([]*domain.QueuedSale, error)
	GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error)
	Counts(ctx context.Context) (map[domain.SaleStatus]int, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// SaleQueueUseCase handles sale queue business logic
type SaleQueueUseCase struct {
	txManager database.TxManager
	saleRepo  SaleRepository
	notify    func()
	logger    *slog.Logger
}

// NewSaleQueueUseCase creates a new SaleQueueUseCase. The notify function is
// called after each successful enqueue to kick the sync engine; it may be nil.
func NewSaleQueueUseCase(
	txManager database.TxManager,
	saleRepo SaleRepository,
	notify func(),
	logger *slog.Logger,
) *SaleQueueUseCase {
	return &SaleQueueUseCase{
		txManager: txManager,
		saleRepo:  saleRepo,
		notify:    notify,
		logger:    logger,
	}
}

// Enqueue validates and durably stores a captured sale. The write commits
// before this returns, so the checkout flow never waits on the network and a
// crash after Enqueue cannot lose the sale.
func (uc *SaleQueueUseCase) Enqueue(
	ctx context.Context,
	payload domain.SalePayload,
) (*domain.QueuedSale, error) {
	if err := appValidation.WrapValidationError(payload.Validate()); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sale := &domain.QueuedSale{
		ID:        uuid.Must(uuid.NewV7()),
		Payload:   payload,
		Status:    domain.SaleStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.saleRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info("sale enqueued",
			slog.String("sale_id", sale.ID.String()),
			slog.String("location_id", payload.LocationID),
			slog.String("payment_method", string(payload.PaymentMethod)),
		)
	}

	if uc.notify != nil {
		uc.notify()
	}

	return sale, nil
}

// Get retrieves a queued sale by id
func (uc *SaleQueueUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// List retrieves queued sales with optional status filter and pagination
func (uc *SaleQueueUseCase) List(
	ctx context.Context,
	status *domain.SaleStatus,
	offset, limit int,
) ([]*domain.QueuedSale, error) {
	return uc.saleRepo.List(ctx, status, offset, limit)
}

// GetPending retrieves sales still awaiting sync in capture order
func (uc *SaleQueueUseCase) GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error) {
	return uc.saleRepo.GetPending(ctx, limit)
}

// Counts returns the number of sales per status
func (uc *SaleQueueUseCase) Counts(ctx context.Context) (map[domain.SaleStatus]int, error) {
	return uc.saleRepo.CountByStatus(ctx)
}

// Remove deletes a queued sale. Sales with a submission in flight cannot be
// removed: the remote outcome is unknown and dropping the row would orphan it.
func (uc *SaleQueueUseCase) Remove(ctx context.Context, id uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		sale, err := uc.saleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if sale.Status == domain.SaleStatusSyncing {
			return apperrors.Wrap(apperrors.ErrConflict, "sale has a submission in flight")
		}

		return uc.saleRepo.Delete(ctx, id)
	})
}
