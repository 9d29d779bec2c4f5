package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pizzeria-agent/internal/domain"
)

type MenuRepository interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	BulkInsert(ctx context.Context, items []domain.MenuItem) error
}

type PgMenuRepository struct {
	pool *pgxpool.Pool
}

func NewPgMenuRepository(pool *pgxpool.Pool) *PgMenuRepository {
	return &PgMenuRepository{pool: pool}
}

func (r *PgMenuRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	const query = `
		SELECT id, name, category, description, price_usd
		FROM menu_items
		ORDER BY category ASC, name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Description, &item.PriceUSD); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PgMenuRepository) BulkInsert(ctx context.Context, items []domain.MenuItem) error {
	if len(items) == 0 {
		return nil
	}

	const query = `
		INSERT INTO menu_items (id, name, category, description, price_usd)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID,
			item.Name,
			item.Category,
			item.Description,
			item.PriceUSD,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
