package service

import (
	"context"
	"errors"
	"testing"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/llm"
)

func TestKnowledgeServiceSearch(t *testing.T) {
	mock := &llm.MockClient{Embedding: []float32{0.5, 0.5}}
	repo := &mockKnowledgeRepo{entries: []domain.KnowledgeEntry{
		{
			ID:       "k1",
			Source:   domain.KnowledgeSourceMenu,
			Name:     "Margherita",
			Category: "Pizza",
			PriceUSD: "9.50",
			Content:  "Menu item: Margherita (category: Pizza). Description: Classic. Price: $9.50 USD.",
		},
		{
			ID:      "k2",
			Source:  domain.KnowledgeSourceReview,
			Title:   "Great delivery",
			Date:    "2024-03-02",
			Rating:  "5",
			Content: "Review titled 'Great delivery' on 2024-03-02 rated 5/5: fast and hot.",
		},
	}}
	svc := NewKnowledgeService(mock, repo, 8)

	matches, err := svc.Search(context.Background(), "cheapest pizza")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Type != domain.KnowledgeSourceMenu || matches[0].Name != "Margherita" || matches[0].PriceUSD != "9.50" {
		t.Fatalf("unexpected menu match: %+v", matches[0])
	}
	if matches[1].Type != domain.KnowledgeSourceReview || matches[1].Rating != "5" {
		t.Fatalf("unexpected review match: %+v", matches[1])
	}
	if len(mock.EmbedCalls) != 1 || mock.EmbedCalls[0] != "cheapest pizza" {
		t.Fatalf("expected query embedded once, got %v", mock.EmbedCalls)
	}
}

func TestKnowledgeServiceSearch_EmptyQuery(t *testing.T) {
	mock := &llm.MockClient{Embedding: []float32{0.5}}
	svc := NewKnowledgeService(mock, &mockKnowledgeRepo{}, 8)

	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, ErrKnowledgeEmptyQuery) {
		t.Fatalf("expected ErrKnowledgeEmptyQuery, got %v", err)
	}
}

func TestKnowledgeServiceSearch_EmbeddingFailure(t *testing.T) {
	mock := &llm.MockClient{EmbedErr: errors.New("embeddings down")}
	svc := NewKnowledgeService(mock, &mockKnowledgeRepo{}, 8)

	if _, err := svc.Search(context.Background(), "pizza"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestKnowledgeServiceSearch_RepoFailure(t *testing.T) {
	mock := &llm.MockClient{Embedding: []float32{0.5}}
	repo := &mockKnowledgeRepo{searchErr: errors.New("db down")}
	svc := NewKnowledgeService(mock, repo, 8)

	if _, err := svc.Search(context.Background(), "pizza"); err == nil {
		t.Fatalf("expected error")
	}
}
