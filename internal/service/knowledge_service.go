package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/repository"
)

// embeddingClient es la parte del cliente LLM que calcula embeddings.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeService busca por similitud semantica en el indice de menu y
// resenas. La busqueda es de solo lectura: misma consulta sobre el mismo
// indice devuelve el mismo ranking.
type KnowledgeService struct {
	llmClient embeddingClient
	repo      repository.KnowledgeRepository
	topK      int
}

var (
	ErrKnowledgeServiceNotConfigured = errors.New("knowledge service not configured")
	ErrKnowledgeEmptyQuery           = errors.New("knowledge query empty")
)

const defaultKnowledgeTopK = 8

func NewKnowledgeService(llmClient embeddingClient, repo repository.KnowledgeRepository, topK int) *KnowledgeService {
	if topK <= 0 {
		topK = defaultKnowledgeTopK
	}
	return &KnowledgeService{
		llmClient: llmClient,
		repo:      repo,
		topK:      topK,
	}
}

func (s *KnowledgeService) Search(ctx context.Context, query string) ([]domain.KnowledgeMatch, error) {
	if s == nil || s.llmClient == nil || s.repo == nil {
		return nil, ErrKnowledgeServiceNotConfigured
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrKnowledgeEmptyQuery
	}

	embed, err := s.llmClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	entries, err := s.repo.Search(ctx, pgvector.NewVector(embed), s.topK)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}

	matches := make([]domain.KnowledgeMatch, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, e.Match())
	}
	return matches, nil
}
