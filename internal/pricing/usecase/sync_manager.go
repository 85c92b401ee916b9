// Package usecase implements the pricing reference-data sync logic.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tillware/posd/internal/database"
	"github.com/tillware/posd/internal/pricing/client"
	"github.com/tillware/posd/internal/pricing/domain"
)

// SyncMode identifies how a sync run resolved.
type SyncMode string

const (
	// SyncModeFull means the local snapshot was replaced wholesale.
	SyncModeFull SyncMode = "full"
	// SyncModeDelta means a delta merge was applied.
	SyncModeDelta SyncMode = "delta"
	// SyncModeSkip means the response cursor matched the stored cursor and
	// the merge was skipped.
	SyncModeSkip SyncMode = "skip"
)

// SyncResult describes the outcome of a sync run.
type SyncResult struct {
	Mode   SyncMode
	Cursor string
}

// SyncConfig holds pricing sync configuration
type SyncConfig struct {
	Interval time.Duration
}

// PricingRepository defines pricing snapshot repository operations
type PricingRepository interface {
	GetCursor(ctx context.Context) (string, error)
	ReplaceAll(ctx context.Context, snapshot *domain.Snapshot) error
	ApplyDelta(
		ctx context.Context,
		deletedItemIDs []string,
		lists []domain.PriceList,
		items []domain.PriceItem,
		allocations map[string][]string,
		cursor string,
	) error
	GetSnapshot(ctx context.Context) (*domain.Snapshot, error)
	ItemsForCustomer(ctx context.Context, customerID string) ([]domain.PriceItem, error)
	Counts(ctx context.Context) (*domain.Counts, error)
}

// PricingUseCase defines the interface for pricing operations
type PricingUseCase interface {
	Sync(ctx context.Context) (*SyncResult, error)
	Status(ctx context.Context) (string, *domain.Counts, error)
	ItemsForCustomer(ctx context.Context, customerID string) ([]domain.PriceItem, error)
}

// SyncManager keeps the local pricing snapshot current. A missing cursor
// forces a full sync; afterwards only deltas are fetched. Overlapping sync
// triggers collapse into one run.
type SyncManager struct {
	config      SyncConfig
	txManager   database.TxManager
	pricingRepo PricingRepository
	fetcher     client.PricingFetcher
	group       singleflight.Group
	trigger     chan struct{}
	logger      *slog.Logger
}

// NewSyncManager creates a new SyncManager
func NewSyncManager(
	config SyncConfig,
	txManager database.TxManager,
	pricingRepo PricingRepository,
	fetcher client.PricingFetcher,
	logger *slog.Logger,
) *SyncManager {
	return &SyncManager{
		config:      config,
		txManager:   txManager,
		pricingRepo: pricingRepo,
		fetcher:     fetcher,
		trigger:     make(chan struct{}, 1),
		logger:      logger,
	}
}

// Trigger requests a sync without blocking.
func (m *SyncManager) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Start runs the periodic sync loop until the context is cancelled.
func (m *SyncManager) Start(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Info("starting pricing sync manager",
			slog.Duration("interval", m.config.Interval),
		)
	}

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if m.logger != nil {
				m.logger.Info("stopping pricing sync manager")
			}
			return ctx.Err()
		case <-ticker.C:
			m.runSync(ctx)
		case <-m.trigger:
			m.runSync(ctx)
		}
	}
}

func (m *SyncManager) runSync(ctx context.Context) {
	if _, err := m.Sync(ctx); err != nil {
		if m.logger != nil {
			m.logger.Error("pricing sync failed", slog.Any("error", err))
		}
	}
}

// Sync performs one full or delta sync. Concurrent callers share a single
// run; a second trigger while a merge is in flight is coalesced, never
// interleaved.
func (m *SyncManager) Sync(ctx context.Context) (*SyncResult, error) {
	result, err, _ := m.group.Do("sync", func() (interface{}, error) {
		return m.sync(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.(*SyncResult), nil
}

func (m *SyncManager) sync(ctx context.Context) (*SyncResult, error) {
	cursor, err := m.pricingRepo.GetCursor(ctx)
	if err != nil {
		return nil, err
	}

	if cursor == "" {
		return m.fullSync(ctx)
	}

	return m.deltaSync(ctx, cursor)
}

func (m *SyncManager) fullSync(ctx context.Context) (*SyncResult, error) {
	envelope, err := m.fetcher.FetchFull(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		Lists:       envelope.Lists(),
		Items:       envelope.Items(),
		Allocations: envelope.Data.CustomerAllocations,
		Cursor:      envelope.Metadata.SyncedAt,
	}

	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		return m.pricingRepo.ReplaceAll(ctx, snapshot)
	})
	if err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("pricing full sync applied",
			slog.Int("lists", len(snapshot.Lists)),
			slog.Int("items", len(snapshot.Items)),
			slog.String("cursor", snapshot.Cursor),
		)
	}

	return &SyncResult{Mode: SyncModeFull, Cursor: snapshot.Cursor}, nil
}

func (m *SyncManager) deltaSync(ctx context.Context, cursor string) (*SyncResult, error) {
	envelope, err := m.fetcher.FetchDelta(ctx, cursor)
	if err != nil {
		return nil, err
	}

	// Duplicate delivery or replay: the remote reports nothing newer than
	// what is already stored, so the merge is skipped entirely.
	if envelope.Metadata.SyncedAt == cursor {
		if m.logger != nil {
			m.logger.Info("pricing delta skipped, cursor unchanged", slog.String("cursor", cursor))
		}
		return &SyncResult{Mode: SyncModeSkip, Cursor: cursor}, nil
	}

	// Merge order is fixed: tombstones first, then upserts, then the
	// allocation union, with the cursor committing in the same transaction.
	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		return m.pricingRepo.ApplyDelta(ctx,
			envelope.Data.DeletedItemIDs,
			envelope.Lists(),
			envelope.Items(),
			envelope.Data.CustomerAllocations,
			envelope.Metadata.SyncedAt,
		)
	})
	if err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("pricing delta applied",
			slog.Int("deleted", len(envelope.Data.DeletedItemIDs)),
			slog.Int("lists", len(envelope.Data.Lists)),
			slog.Int("items", len(envelope.Data.Items)),
			slog.String("cursor", envelope.Metadata.SyncedAt),
		)
	}

	return &SyncResult{Mode: SyncModeDelta, Cursor: envelope.Metadata.SyncedAt}, nil
}

// Status reports the stored cursor and snapshot counts.
func (m *SyncManager) Status(ctx context.Context) (string, *domain.Counts, error) {
	cursor, err := m.pricingRepo.GetCursor(ctx)
	if err != nil {
		return "", nil, err
	}

	counts, err := m.pricingRepo.Counts(ctx)
	if err != nil {
		return "", nil, err
	}

	return cursor, counts, nil
}

// ItemsForCustomer retrieves the effective price items for a customer.
func (m *SyncManager) ItemsForCustomer(
	ctx context.Context,
	customerID string,
) ([]domain.PriceItem, error) {
	return m.pricingRepo.ItemsForCustomer(ctx, customerID)
}
