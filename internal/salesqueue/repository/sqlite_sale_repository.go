// Package repository provides data persistence implementations for the sale queue.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/database"
	apperrors "github.com/tillware/posd/internal/errors"
	"github.com/tillware/posd/internal/salesqueue/domain"
)

// SqliteSaleRepository handles queued sale persistence for SQLite.
type SqliteSaleRepository struct {
	db *sql.DB
}

// NewSqliteSaleRepository creates a new SqliteSaleRepository
func NewSqliteSaleRepository(db *sql.DB) *SqliteSaleRepository {
	return &SqliteSaleRepository{
		db: db,
	}
}

// Create inserts a new queued sale
func (r *SqliteSaleRepository) Create(ctx context.Context, sale *domain.QueuedSale) error {
	querier := database.GetTx(ctx, r.db)

	payload, err := json.Marshal(sale.Payload)
	if err != nil {
		return err
	}

	query := `INSERT INTO queued_sales (id, payload, status, retry_count, last_error, synced_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, sale.ID.String(), string(payload), sale.Status,
		sale.RetryCount, sale.LastError, sale.SyncedAt, sale.CreatedAt, sale.UpdatedAt)

	return err
}

// GetByID retrieves a queued sale by its id
func (r *SqliteSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
			  FROM queued_sales
			  WHERE id = ?`

	row := querier.QueryRowContext(ctx, query, id.String())

	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "queued sale not found")
	}
	if err != nil {
		return nil, err
	}

	return sale, nil
}

// GetPending retrieves sales awaiting sync in capture order. Sales stuck in
// syncing are included: a crash mid-submission must not strand them.
func (r *SqliteSaleRepository) GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
			  FROM queued_sales
			  WHERE status IN (?, ?, ?)
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query,
		domain.SaleStatusQueued, domain.SaleStatusFailed, domain.SaleStatusSyncing, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var sales []*domain.QueuedSale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}

		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

// List retrieves queued sales filtered by status with pagination, newest first
func (r *SqliteSaleRepository) List(
	ctx context.Context,
	status *domain.SaleStatus,
	offset, limit int,
) ([]*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
			  FROM queued_sales`
	args := []interface{}{}

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var sales []*domain.QueuedSale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}

		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

// Update updates a queued sale
func (r *SqliteSaleRepository) Update(ctx context.Context, sale *domain.QueuedSale) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE queued_sales
			  SET status = ?, retry_count = ?, last_error = ?, synced_at = ?, updated_at = ?
			  WHERE id = ?`

	sale.UpdatedAt = time.Now().UTC()

	_, err := querier.ExecContext(ctx, query, sale.Status, sale.RetryCount, sale.LastError,
		sale.SyncedAt, sale.UpdatedAt, sale.ID.String())

	return err
}

// Delete removes a queued sale
func (r *SqliteSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM queued_sales WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "queued sale not found")
	}

	return nil
}

// CountByStatus returns the number of sales per status
func (r *SqliteSaleRepository) CountByStatus(ctx context.Context) (map[domain.SaleStatus]int, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT status, COUNT(*) FROM queued_sales GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[domain.SaleStatus]int)
	for rows.Next() {
		var status domain.SaleStatus
		var count int

		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}

		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*domain.QueuedSale, error) {
	var sale domain.QueuedSale
	var id string
	var payload string

	err := row.Scan(&id, &payload, &sale.Status, &sale.RetryCount,
		&sale.LastError, &sale.SyncedAt, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sale.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &sale.Payload); err != nil {
		return nil, err
	}

	return &sale, nil
}
