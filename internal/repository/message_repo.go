package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pizzeria-agent/internal/domain"
)

type MessageRepository interface {
	// AppendAll inserta los mensajes de un turno en una sola transaccion:
	// o se persiste el turno completo o no se persiste nada.
	AppendAll(ctx context.Context, messages []domain.Message) error
	ListByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) AppendAll(ctx context.Context, messages []domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	const query = `
		INSERT INTO messages (id, chat_id, user_id, role, content, action_calls, action_call_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, msg := range messages {
		var calls []byte
		if len(msg.ActionCalls) > 0 {
			calls, err = json.Marshal(msg.ActionCalls)
			if err != nil {
				return err
			}
		}
		var callID any
		if msg.ActionCallID != "" {
			callID = msg.ActionCallID
		}
		if _, err := tx.Exec(ctx, query,
			msg.ID,
			msg.ChatID,
			msg.UserID,
			msg.Role,
			msg.Content,
			calls,
			callID,
			msg.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgMessageRepository) ListByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	const query = `
		SELECT id, chat_id, user_id, role, content, action_calls, action_call_id, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var calls []byte
		var callID *string

		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&calls,
			&callID,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(calls) > 0 {
			if err := json.Unmarshal(calls, &msg.ActionCalls); err != nil {
				return nil, err
			}
		}
		if callID != nil {
			msg.ActionCallID = *callID
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
