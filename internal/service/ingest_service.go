package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/repository"
)

// Archivos tabulares de origen, con los mismos nombres y columnas del dataset
// original de la pizzeria.
const (
	menuCSVName    = "pizzeria_menu.csv"
	reviewsCSVName = "restaurant_reviews.csv"
)

// IngestService construye el indice de conocimiento a partir de los CSV de
// menu y resenas: renderiza cada fila como texto, calcula su embedding y la
// guarda en Postgres. La reconstruccion es idempotente: si el indice ya tiene
// filas se reutiliza tal cual.
type IngestService struct {
	llmClient embeddingClient
	knowledge repository.KnowledgeRepository
	menu      repository.MenuRepository
	logger    *zap.Logger
}

var ErrIngestNotConfigured = errors.New("ingest service not configured")

func NewIngestService(llmClient embeddingClient, knowledge repository.KnowledgeRepository, menu repository.MenuRepository, logger *zap.Logger) *IngestService {
	return &IngestService{
		llmClient: llmClient,
		knowledge: knowledge,
		menu:      menu,
		logger:    logger,
	}
}

// IngestDir carga los dos CSV del directorio de datos. Devuelve cuantas
// entradas nuevas se indexaron (0 si el indice ya existia).
func (s *IngestService) IngestDir(ctx context.Context, dataDir string) (int, error) {
	if s == nil || s.llmClient == nil || s.knowledge == nil {
		return 0, ErrIngestNotConfigured
	}

	existing, err := s.knowledge.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count knowledge entries: %w", err)
	}
	if existing > 0 {
		if s.logger != nil {
			s.logger.Info("knowledge index already built, reusing", zap.Int("entries", existing))
		}
		return 0, nil
	}

	var entries []domain.KnowledgeEntry
	var items []domain.MenuItem

	menuPath := filepath.Join(dataDir, menuCSVName)
	if f, err := os.Open(menuPath); err == nil {
		menuEntries, menuItems, parseErr := parseMenuCSV(f)
		f.Close()
		if parseErr != nil {
			return 0, fmt.Errorf("parse %s: %w", menuCSVName, parseErr)
		}
		entries = append(entries, menuEntries...)
		items = append(items, menuItems...)
	} else if s.logger != nil {
		s.logger.Warn("menu csv not found", zap.String("path", menuPath))
	}

	reviewsPath := filepath.Join(dataDir, reviewsCSVName)
	if f, err := os.Open(reviewsPath); err == nil {
		reviewEntries, parseErr := parseReviewsCSV(f)
		f.Close()
		if parseErr != nil {
			return 0, fmt.Errorf("parse %s: %w", reviewsCSVName, parseErr)
		}
		entries = append(entries, reviewEntries...)
	} else if s.logger != nil {
		s.logger.Warn("reviews csv not found", zap.String("path", reviewsPath))
	}

	if len(entries) == 0 {
		return 0, nil
	}

	for i := range entries {
		embed, err := s.llmClient.CreateEmbedding(ctx, entries[i].Content)
		if err != nil {
			return 0, fmt.Errorf("embed entry %q: %w", entries[i].ID, err)
		}
		entries[i].Embedding = pgvector.NewVector(embed)
	}

	if err := s.knowledge.BulkInsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("insert knowledge entries: %w", err)
	}

	if s.menu != nil && len(items) > 0 {
		if err := s.menu.BulkInsert(ctx, items); err != nil {
			return 0, fmt.Errorf("insert menu items: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("knowledge index built", zap.Int("entries", len(entries)))
	}
	return len(entries), nil
}

// parseMenuCSV lee filas name,category,description,price_usd y las proyecta
// como entradas de conocimiento mas items de carta.
func parseMenuCSV(r io.Reader) ([]domain.KnowledgeEntry, []domain.MenuItem, error) {
	rows, err := readCSVRecords(r)
	if err != nil {
		return nil, nil, err
	}

	var entries []domain.KnowledgeEntry
	var items []domain.MenuItem
	now := time.Now().UTC()

	for _, row := range rows {
		name := strings.TrimSpace(row["name"])
		category := strings.TrimSpace(row["category"])
		description := strings.TrimSpace(row["description"])
		price := strings.TrimSpace(row["price_usd"])

		content := fmt.Sprintf(
			"Menu item: %s (category: %s). Description: %s. Price: $%s USD.",
			name, category, description, price,
		)

		id := uuid.NewString()
		entries = append(entries, domain.KnowledgeEntry{
			ID:        id,
			Source:    domain.KnowledgeSourceMenu,
			Name:      name,
			Category:  category,
			PriceUSD:  price,
			Content:   content,
			CreatedAt: now,
		})
		items = append(items, domain.MenuItem{
			ID:          id,
			Name:        name,
			Category:    category,
			Description: description,
			PriceUSD:    price,
		})
	}
	return entries, items, nil
}

// parseReviewsCSV lee filas Title,Date,Rating,Review.
func parseReviewsCSV(r io.Reader) ([]domain.KnowledgeEntry, error) {
	rows, err := readCSVRecords(r)
	if err != nil {
		return nil, err
	}

	var entries []domain.KnowledgeEntry
	now := time.Now().UTC()

	for _, row := range rows {
		title := strings.TrimSpace(row["Title"])
		date := strings.TrimSpace(row["Date"])
		rating := strings.TrimSpace(row["Rating"])
		review := strings.TrimSpace(row["Review"])

		content := fmt.Sprintf("Review titled '%s' on %s rated %s/5: %s", title, date, rating, review)

		entries = append(entries, domain.KnowledgeEntry{
			ID:        uuid.NewString(),
			Source:    domain.KnowledgeSourceReview,
			Title:     title,
			Date:      date,
			Rating:    rating,
			Content:   content,
			CreatedAt: now,
		})
	}
	return entries, nil
}

// readCSVRecords devuelve cada fila como mapa columna->valor usando la
// primera fila como cabecera.
func readCSVRecords(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
