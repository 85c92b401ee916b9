package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/database"
	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/printing/domain"
)

// PostgreSQLPrintRepository handles print job persistence for PostgreSQL.
type PostgreSQLPrintRepository struct {
	db *sql.DB
}

// NewPostgreSQLPrintRepository creates a new PostgreSQLPrintRepository
func NewPostgreSQLPrintRepository(db *sql.DB) *PostgreSQLPrintRepository {
	return &PostgreSQLPrintRepository{
		db: db,
	}
}

// Create inserts a new print job
func (r *PostgreSQLPrintRepository) Create(ctx context.Context, job *domain.PrintJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO print_jobs (id, order_id, order_number, job_type, format, status,
				  retry_count, max_retries, error, device_id, artifact, copies, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(ctx, query, job.ID.String(), job.OrderID, job.OrderNumber,
		job.JobType, job.Format, job.Status, job.RetryCount, job.MaxRetries, job.Error,
		job.DeviceID, job.Artifact, job.Copies, job.CreatedAt, job.UpdatedAt)

	return err
}

// GetByID retrieves a print job by its id
func (r *PostgreSQLPrintRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  WHERE id = $1`

	row := querier.QueryRowContext(ctx, query, id.String())

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "print job not found")
	}
	if err != nil {
		return nil, err
	}

	return job, nil
}

// ListByStatus retrieves jobs in one status, oldest first. Rows are locked
// with SKIP LOCKED so two drains on a shared database cannot pick up the
// same job.
func (r *PostgreSQLPrintRepository) ListByStatus(
	ctx context.Context,
	status domain.JobStatus,
	limit int,
) ([]*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return collectJobs(rows)
}

// ListRecent retrieves the most recently created jobs, newest first
func (r *PostgreSQLPrintRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  ORDER BY created_at DESC
			  LIMIT $1`

	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return collectJobs(rows)
}

// Update updates a print job
func (r *PostgreSQLPrintRepository) Update(ctx context.Context, job *domain.PrintJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE print_jobs
			  SET status = $1, retry_count = $2, error = $3, device_id = $4, updated_at = $5
			  WHERE id = $6`

	job.UpdatedAt = time.Now().UTC()

	_, err := querier.ExecContext(ctx, query, job.Status, job.RetryCount, job.Error,
		job.DeviceID, job.UpdatedAt, job.ID.String())

	return err
}

// Delete removes a print job
func (r *PostgreSQLPrintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM print_jobs WHERE id = $1`, id.String())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "print job not found")
	}

	return nil
}

// Prune drops all but the newest keep jobs. Queued jobs are exempt: the
// retry queue survives history retention.
func (r *PostgreSQLPrintRepository) Prune(ctx context.Context, keep int) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM print_jobs
			  WHERE status != $1
				AND id NOT IN (
					SELECT id FROM print_jobs
					WHERE status != $2
					ORDER BY created_at DESC
					LIMIT $3
				)`

	_, err := querier.ExecContext(ctx, query, domain.JobStatusQueued, domain.JobStatusQueued, keep)

	return err
}
