package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pizzeria-agent/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Order, error)
}

type PgOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPgOrderRepository(pool *pgxpool.Pool) *PgOrderRepository {
	return &PgOrderRepository{pool: pool}
}

func (r *PgOrderRepository) Create(ctx context.Context, order domain.Order) error {
	const query = `
		INSERT INTO orders (id, user_id, pizza_name, address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.PizzaName,
		order.Address,
		order.Status,
		order.CreatedAt,
	)
	return err
}

func (r *PgOrderRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	const query = `
		SELECT id, user_id, pizza_name, address, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.PizzaName, &o.Address, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
