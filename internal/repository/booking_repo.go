package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pizzeria-agent/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Booking, error)
}

type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

func (r *PgBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	const query = `
		INSERT INTO bookings (id, user_id, booked_for, guest_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.Time,
		booking.Name,
		booking.CreatedAt,
	)
	return err
}

func (r *PgBookingRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `
		SELECT id, user_id, booked_for, guest_name, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.Time, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
