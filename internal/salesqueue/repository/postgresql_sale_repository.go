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

// PostgreSQLSaleRepository handles queued sale persistence for PostgreSQL.
type PostgreSQLSaleRepository struct {
	db *sql.DB
}

// NewPostgreSQLSaleRepository creates a new PostgreSQLSaleRepository
func NewPostgreSQLSaleRepository(db *sql.DB) *PostgreSQLSaleRepository {
	return &PostgreSQLSaleRepository{
		db: db,
	}
}

// Create inserts a new queued sale
func (r *PostgreSQLSaleRepository) Create(ctx context.Context, sale *domain.QueuedSale) error {
	querier := database.GetTx(ctx, r.db)

	payload, err := json.Marshal(sale.Payload)
	if err != nil {
		return err
	}

	query := `INSERT INTO queued_sales (id, payload, status, retry_count, last_error, synced_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(ctx, query, sale.ID.String(), string(payload), sale.Status,
		sale.RetryCount, sale.LastError, sale.SyncedAt, sale.CreatedAt, sale.UpdatedAt)

	return err
}

// GetByID retrieves a queued sale by its id
func (r *PostgreSQLSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
			  FROM queued_sales
			  WHERE id = $1`

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
func (r *PostgreSQLSaleRepository) GetPending(ctx context.Context, limit int) ([]*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
			  FROM queued_sales
			  WHERE status IN ($1, $2, $3)
			  ORDER BY created_at ASC
			  LIMIT $4
			  FOR UPDATE SKIP LOCKED`

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
func (r *PostgreSQLSaleRepository) List(
	ctx context.Context,
	status *domain.SaleStatus,
	offset, limit int,
) ([]*domain.QueuedSale, error) {
	querier := database.GetTx(ctx, r.db)

	var rows *sql.Rows
	var err error

	if status != nil {
		query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
				  FROM queued_sales
				  WHERE status = $1
				  ORDER BY created_at DESC
				  LIMIT $2 OFFSET $3`
		rows, err = querier.QueryContext(ctx, query, *status, limit, offset)
	} else {
		query := `SELECT id, payload, status, retry_count, last_error, synced_at, created_at, updated_at
				  FROM queued_sales
				  ORDER BY created_at DESC
				  LIMIT $1 OFFSET $2`
		rows, err = querier.QueryContext(ctx, query, limit, offset)
	}
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
func (r *PostgreSQLSaleRepository) Update(ctx context.Context, sale *domain.QueuedSale) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE queued_sales
			  SET status = $1, retry_count = $2, last_error = $3, synced_at = $4, updated_at = $5
			  WHERE id = $6`

	sale.UpdatedAt = time.Now().UTC()

	_, err := querier.ExecContext(ctx, query, sale.Status, sale.RetryCount, sale.LastError,
		sale.SyncedAt, sale.UpdatedAt, sale.ID.String())

	return err
}

// Delete removes a queued sale
func (r *PostgreSQLSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM queued_sales WHERE id = $1`, id.String())
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
func (r *PostgreSQLSaleRepository) CountByStatus(ctx context.Context) (map[domain.SaleStatus]int, error) {
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
