package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"pizzeria-agent/internal/domain"
)

type KnowledgeRepository interface {
	BulkInsert(ctx context.Context, entries []domain.KnowledgeEntry) error
	Search(ctx context.Context, queryEmbedding pgvector.Vector, k int) ([]domain.KnowledgeEntry, error)
	Count(ctx context.Context) (int, error)
}

type PgKnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewPgKnowledgeRepository(pool *pgxpool.Pool) *PgKnowledgeRepository {
	return &PgKnowledgeRepository{pool: pool}
}

const knowledgeColumns = `id, source, name, category, price_usd, title, review_date, rating, content, embedding, created_at`

func (r *PgKnowledgeRepository) BulkInsert(ctx context.Context, entries []domain.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const query = `
		INSERT INTO knowledge_entries (id, source, name, category, price_usd, title, review_date, rating, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query,
			e.ID,
			e.Source,
			e.Name,
			e.Category,
			e.PriceUSD,
			e.Title,
			e.Date,
			e.Rating,
			e.Content,
			e.Embedding,
			e.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgKnowledgeRepository) Search(ctx context.Context, queryEmbedding pgvector.Vector, k int) ([]domain.KnowledgeEntry, error) {
	if k <= 0 {
		k = 8
	}
	const query = `
		SELECT ` + knowledgeColumns + `
		FROM knowledge_entries
		ORDER BY embedding <=> $1, id ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.KnowledgeEntry
	for rows.Next() {
		var e domain.KnowledgeEntry
		if err := rows.Scan(
			&e.ID,
			&e.Source,
			&e.Name,
			&e.Category,
			&e.PriceUSD,
			&e.Title,
			&e.Date,
			&e.Rating,
			&e.Content,
			&e.Embedding,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgKnowledgeRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_entries`).Scan(&n)
	return n, err
}
