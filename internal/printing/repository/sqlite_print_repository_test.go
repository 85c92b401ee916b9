package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/printing/domain"
	"github.com/tillware/posd/internal/testutil"
)

func newTestJob(createdAt time.Time) *domain.PrintJob {
	return &domain.PrintJob{
		ID:          uuid.Must(uuid.NewV7()),
		OrderID:     "order-1",
		OrderNumber: "ORD-0001",
		JobType:     domain.JobTypeReceipt,
		Format:      domain.JobFormatThermal,
		Status:      domain.JobStatusPending,
		MaxRetries:  2,
		DeviceID:    "thermal-front",
		Artifact:    "[C]RECEIPT\n",
		Copies:      1,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestSqlitePrintRepository_CreateAndGetByID(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	job := newTestJob(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.GetByID(ctx, job.ID)

	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobTypeReceipt, got.JobType)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.Equal(t, "thermal-front", got.DeviceID)
	assert.Equal(t, "[C]RECEIPT\n", got.Artifact)
	assert.Equal(t, 2, got.MaxRetries)
}

func TestSqlitePrintRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSqlitePrintRepository_ListByStatus_OldestFirst(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)

	older := newTestJob(base)
	older.Status = domain.JobStatusQueued
	newer := newTestJob(base.Add(time.Minute))
	newer.Status = domain.JobStatusQueued
	unrelated := newTestJob(base.Add(2 * time.Minute))
	unrelated.Status = domain.JobStatusFailed

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, unrelated))

	queued, err := repo.ListByStatus(ctx, domain.JobStatusQueued, 10)

	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, older.ID, queued[0].ID)
	assert.Equal(t, newer.ID, queued[1].ID)
}

func TestSqlitePrintRepository_ListRecent_NewestFirst(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	first := newTestJob(base)
	second := newTestJob(base.Add(time.Minute))
	third := newTestJob(base.Add(2 * time.Minute))

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	recent, err := repo.ListRecent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, third.ID, recent[0].ID)
	assert.Equal(t, second.ID, recent[1].ID)
}

func TestSqlitePrintRepository_Update(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	job := newTestJob(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, job))

	printerJam := "printer out of paper"
	job.Status = domain.JobStatusFailed
	job.RetryCount = 1
	job.Error = &printerJam
	require.NoError(t, repo.Update(ctx, job))

	got, err := repo.GetByID(ctx, job.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	require.NotNil(t, got.Error)
	assert.Equal(t, printerJam, *got.Error)
}

func TestSqlitePrintRepository_Delete(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	job := newTestJob(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.Delete(ctx, job.ID))

	_, err := repo.GetByID(ctx, job.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSqlitePrintRepository_Delete_NotFound(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)

	err := repo.Delete(context.Background(), uuid.Must(uuid.NewV7()))

	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSqlitePrintRepository_Prune_KeepsNewestAndQueued(t *testing.T) {
	db := testutil.SetupSqliteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSqlitePrintRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)

	oldest := newTestJob(base)
	oldest.Status = domain.JobStatusSuccess
	queued := newTestJob(base.Add(time.Minute))
	queued.Status = domain.JobStatusQueued
	middle := newTestJob(base.Add(2 * time.Minute))
	middle.Status = domain.JobStatusFailed
	newest := newTestJob(base.Add(3 * time.Minute))
	newest.Status = domain.JobStatusSuccess

	require.NoError(t, repo.Create(ctx, oldest))
	require.NoError(t, repo.Create(ctx, queued))
	require.NoError(t, repo.Create(ctx, middle))
	require.NoError(t, repo.Create(ctx, newest))

	require.NoError(t, repo.Prune(ctx, 2))

	// The two newest non-queued jobs survive; the oldest is pruned.
	_, err := repo.GetByID(ctx, oldest.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = repo.GetByID(ctx, middle.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, newest.ID)
	assert.NoError(t, err)

	// Queued jobs are never pruned regardless of age.
	_, err = repo.GetByID(ctx, queued.ID)
	assert.NoError(t, err)
}
