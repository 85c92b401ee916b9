package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tillware/posd/internal/database"
	"github.com/tillware/posd/internal/pricing/domain"
)

// PostgreSQLPricingRepository handles pricing snapshot persistence for PostgreSQL.
type PostgreSQLPricingRepository struct {
	db *sql.DB
}

// NewPostgreSQLPricingRepository creates a new PostgreSQLPricingRepository
func NewPostgreSQLPricingRepository(db *sql.DB) *PostgreSQLPricingRepository {
	return &PostgreSQLPricingRepository{
		db: db,
	}
}

// GetCursor retrieves the stored sync cursor, or "" when no sync has happened yet
func (r *PostgreSQLPricingRepository) GetCursor(ctx context.Context) (string, error) {
	querier := database.GetTx(ctx, r.db)

	var cursor string
	err := querier.QueryRowContext(ctx, `SELECT cursor FROM pricing_cursor WHERE id = 1`).Scan(&cursor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return cursor, nil
}

// SetCursor stores the sync cursor
func (r *PostgreSQLPricingRepository) SetCursor(ctx context.Context, cursor string) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pricing_cursor (id, cursor, updated_at) VALUES (1, $1, $2)
			  ON CONFLICT (id) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`

	_, err := querier.ExecContext(ctx, query, cursor, time.Now().UTC())
	return err
}

// ReplaceAll replaces the entire local snapshot and cursor
func (r *PostgreSQLPricingRepository) ReplaceAll(ctx context.Context, snapshot *domain.Snapshot) error {
	querier := database.GetTx(ctx, r.db)

	for _, table := range []string{"price_items", "price_lists", "customer_allocations"} {
		if _, err := querier.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return err
		}
	}

	if err := r.upsertLists(ctx, snapshot.Lists); err != nil {
		return err
	}
	if err := r.upsertItems(ctx, snapshot.Items); err != nil {
		return err
	}
	if err := r.replaceAllocations(ctx, snapshot.Allocations); err != nil {
		return err
	}

	return r.SetCursor(ctx, snapshot.Cursor)
}

// ApplyDelta applies a delta merge in the fixed order: tombstoned item
// deletions, then list/item upserts, then allocation union, then the cursor.
func (r *PostgreSQLPricingRepository) ApplyDelta(
	ctx context.Context,
	deletedItemIDs []string,
	lists []domain.PriceList,
	items []domain.PriceItem,
	allocations map[string][]string,
	cursor string,
) error {
	querier := database.GetTx(ctx, r.db)

	for _, id := range deletedItemIDs {
		if _, err := querier.ExecContext(ctx, `DELETE FROM price_items WHERE id = $1`, id); err != nil {
			return err
		}
	}

	if err := r.upsertLists(ctx, lists); err != nil {
		return err
	}
	if err := r.upsertItems(ctx, items); err != nil {
		return err
	}
	if err := r.replaceAllocations(ctx, allocations); err != nil {
		return err
	}

	return r.SetCursor(ctx, cursor)
}

// GetSnapshot retrieves the full local snapshot
func (r *PostgreSQLPricingRepository) GetSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	querier := database.GetTx(ctx, r.db)

	snapshot := &domain.Snapshot{Allocations: make(map[string][]string)}

	cursor, err := r.GetCursor(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Cursor = cursor

	rows, err := querier.QueryContext(ctx,
		`SELECT id, name, priority, scope, valid_from, valid_to, active FROM price_lists ORDER BY priority DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var list domain.PriceList
		if err := rows.Scan(&list.ID, &list.Name, &list.Priority, &list.Scope,
			&list.ValidFrom, &list.ValidTo, &list.Active); err != nil {
			return nil, err
		}
		snapshot.Lists = append(snapshot.Lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := querier.QueryContext(ctx,
		`SELECT id, list_id, sku, price, currency FROM price_items ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close() //nolint:errcheck

	for itemRows.Next() {
		var item domain.PriceItem
		if err := itemRows.Scan(&item.ID, &item.ListID, &item.SKU, &item.Price, &item.Currency); err != nil {
			return nil, err
		}
		snapshot.Items = append(snapshot.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	allocRows, err := querier.QueryContext(ctx,
		`SELECT customer_id, list_id FROM customer_allocations ORDER BY customer_id ASC, list_id ASC`)
	if err != nil {
		return nil, err
	}
	defer allocRows.Close() //nolint:errcheck

	for allocRows.Next() {
		var customerID, listID string
		if err := allocRows.Scan(&customerID, &listID); err != nil {
			return nil, err
		}
		snapshot.Allocations[customerID] = append(snapshot.Allocations[customerID], listID)
	}
	if err := allocRows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ItemsForCustomer retrieves the effective price items for a customer: items
// from active global lists plus items from lists allocated to the customer.
func (r *PostgreSQLPricingRepository) ItemsForCustomer(
	ctx context.Context,
	customerID string,
) ([]domain.PriceItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT i.id, i.list_id, i.sku, i.price, i.currency
			  FROM price_items i
			  JOIN price_lists l ON l.id = i.list_id
			  WHERE l.active = TRUE
			    AND (l.scope = $1 OR l.id IN (
			        SELECT list_id FROM customer_allocations WHERE customer_id = $2))
			  ORDER BY l.priority DESC, i.sku ASC`

	rows, err := querier.QueryContext(ctx, query, domain.ListScopeGlobal, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var items []domain.PriceItem
	for rows.Next() {
		var item domain.PriceItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.SKU, &item.Price, &item.Currency); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Counts reports snapshot sizes for the status endpoint
func (r *PostgreSQLPricingRepository) Counts(ctx context.Context) (*domain.Counts, error) {
	querier := database.GetTx(ctx, r.db)

	counts := &domain.Counts{}

	row := querier.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM price_lists),
		        (SELECT COUNT(*) FROM price_items),
		        (SELECT COUNT(*) FROM customer_allocations)`)
	if err := row.Scan(&counts.Lists, &counts.Items, &counts.Allocations); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *PostgreSQLPricingRepository) upsertLists(ctx context.Context, lists []domain.PriceList) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO price_lists (id, name, priority, scope, valid_from, valid_to, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO UPDATE SET
			      name = excluded.name, priority = excluded.priority, scope = excluded.scope,
			      valid_from = excluded.valid_from, valid_to = excluded.valid_to, active = excluded.active`

	for _, list := range lists {
		_, err := querier.ExecContext(ctx, query, list.ID, list.Name, list.Priority,
			list.Scope, list.ValidFrom, list.ValidTo, list.Active)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PostgreSQLPricingRepository) upsertItems(ctx context.Context, items []domain.PriceItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO price_items (id, list_id, sku, price, currency)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (id) DO UPDATE SET
			      list_id = excluded.list_id, sku = excluded.sku,
			      price = excluded.price, currency = excluded.currency`

	for _, item := range items {
		_, err := querier.ExecContext(ctx, query, item.ID, item.ListID, item.SKU, item.Price, item.Currency)
		if err != nil {
			return err
		}
	}

	return nil
}

// replaceAllocations unions allocation entries by customer key: each customer
// present in the input has their allocation set overwritten.
func (r *PostgreSQLPricingRepository) replaceAllocations(
	ctx context.Context,
	allocations map[string][]string,
) error {
	querier := database.GetTx(ctx, r.db)

	for customerID, listIDs := range allocations {
		if _, err := querier.ExecContext(ctx,
			`DELETE FROM customer_allocations WHERE customer_id = $1`, customerID); err != nil {
			return err
		}

		for _, listID := range listIDs {
			if _, err := querier.ExecContext(ctx,
				`INSERT INTO customer_allocations (customer_id, list_id) VALUES ($1, $2)`,
				customerID, listID); err != nil {
				return err
			}
		}
	}

	return nil
}
