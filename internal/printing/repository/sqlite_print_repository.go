// Package repository provides data persistence implementations for print jobs.
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

// SqlitePrintRepository handles print job persistence for SQLite.
type SqlitePrintRepository struct {
	db *sql.DB
}

// NewSqlitePrintRepository creates a new SqlitePrintRepository
func NewSqlitePrintRepository(db *sql.DB) *SqlitePrintRepository {
	return &SqlitePrintRepository{
		db: db,
	}
}

// Create inserts a new print job
func (r *SqlitePrintRepository) Create(ctx context.Context, job *domain.PrintJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO print_jobs (id, order_id, order_number, job_type, format, status,
				  retry_count, max_retries, error, device_id, artifact, copies, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, job.ID.String(), job.OrderID, job.OrderNumber,
		job.JobType, job.Format, job.Status, job.RetryCount, job.MaxRetries, job.Error,
		job.DeviceID, job.Artifact, job.Copies, job.CreatedAt, job.UpdatedAt)

	return err
}

// GetByID retrieves a print job by its id
func (r *SqlitePrintRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  WHERE id = ?`

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

// ListByStatus retrieves jobs in one status, oldest first
func (r *SqlitePrintRepository) ListByStatus(
	ctx context.Context,
	status domain.JobStatus,
	limit int,
) ([]*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return collectJobs(rows)
}

// ListRecent retrieves the most recently created jobs, newest first
func (r *SqlitePrintRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PrintJob, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, order_number, job_type, format, status, retry_count,
				  max_retries, error, device_id, artifact, copies, created_at, updated_at
			  FROM print_jobs
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return collectJobs(rows)
}

// Update updates a print job
func (r *SqlitePrintRepository) Update(ctx context.Context, job *domain.PrintJob) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE print_jobs
			  SET status = ?, retry_count = ?, error = ?, device_id = ?, updated_at = ?
			  WHERE id = ?`

	job.UpdatedAt = time.Now().UTC()

	_, err := querier.ExecContext(ctx, query, job.Status, job.RetryCount, job.Error,
		job.DeviceID, job.UpdatedAt, job.ID.String())

	return err
}

// Delete removes a print job
func (r *SqlitePrintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM print_jobs WHERE id = ?`, id.String())
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
func (r *SqlitePrintRepository) Prune(ctx context.Context, keep int) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM print_jobs
			  WHERE status != ?
				AND id NOT IN (
					SELECT id FROM print_jobs
					WHERE status != ?
					ORDER BY created_at DESC
					LIMIT ?
				)`

	_, err := querier.ExecContext(ctx, query, domain.JobStatusQueued, domain.JobStatusQueued, keep)

	return err
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*domain.PrintJob, error) {
	var job domain.PrintJob
	var id string

	err := row.Scan(&id, &job.OrderID, &job.OrderNumber, &job.JobType, &job.Format,
		&job.Status, &job.RetryCount, &job.MaxRetries, &job.Error, &job.DeviceID,
		&job.Artifact, &job.Copies, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]*domain.PrintJob, error) {
	var jobs []*domain.PrintJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
