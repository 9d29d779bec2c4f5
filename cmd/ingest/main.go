package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pizzeria-agent/internal/config"
	"pizzeria-agent/internal/db"
	"pizzeria-agent/internal/llm"
	"pizzeria-agent/internal/repository"
	"pizzeria-agent/internal/service"
)

// Construye el indice de conocimiento desde los CSV de menu y resenas. Si el
// indice ya tiene filas no hace nada; correrlo dos veces es seguro.
func main() {
	dataDir := flag.String("data", "", "directorio con los CSV (default: DATA_DIR)")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if *dataDir == "" {
		*dataDir = cfg.DataDir
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, log.Default())
	knowledgeRepo := repository.NewPgKnowledgeRepository(pool)
	menuRepo := repository.NewPgMenuRepository(pool)
	ingestSvc := service.NewIngestService(llmClient, knowledgeRepo, menuRepo, logger)

	n, err := ingestSvc.IngestDir(ctx, *dataDir)
	if err != nil {
		logger.Fatal("ingest failed", zap.Error(err))
	}
	logger.Info("ingest done", zap.Int("new_entries", n), zap.String("data_dir", *dataDir))
}
