package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pizzeria-agent/internal/config"
	"pizzeria-agent/internal/db"
	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/email"
	"pizzeria-agent/internal/llm"
	"pizzeria-agent/internal/repository"
	"pizzeria-agent/internal/service"
)

// Chat interactivo contra el asistente de la pizzeria, con persistencia real.
// Util para probar flujos de pedido, reserva y consultas sin levantar el API.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	chatRepo := repository.NewPgChatRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	orderRepo := repository.NewPgOrderRepository(pool)
	bookingRepo := repository.NewPgBookingRepository(pool)
	menuRepo := repository.NewPgMenuRepository(pool)
	knowledgeRepo := repository.NewPgKnowledgeRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, log.Default())
	emailSender := email.NewDisabledSender("email disabled in cli chat")

	orderSvc := service.NewOrderService(orderRepo)
	bookingSvc := service.NewBookingService(bookingRepo, userRepo, emailSender, logger)
	knowledgeSvc := service.NewKnowledgeService(llmClient, knowledgeRepo, cfg.KnowledgeTopK)
	ingestSvc := service.NewIngestService(llmClient, knowledgeRepo, menuRepo, logger)

	if _, err := ingestSvc.IngestDir(ctx, cfg.DataDir); err != nil {
		logger.Warn("knowledge ingest failed", zap.Error(err))
	}

	registry := service.NewActionRegistry(orderSvc, bookingSvc, knowledgeSvc)
	agentSvc := service.NewAgentService(llmClient, registry, logger, cfg.AgentMaxIterations)
	chatSvc := service.NewChatService(chatRepo, messageRepo, agentSvc, logger)

	user, err := ensureUser(ctx, userRepo, "cli_test@example.com")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("---- Pizzeria chat (escribe 'salir' para terminar) ----")
	chatID := ""
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Hasta luego.")
			return
		}

		chat, reply, err := chatSvc.Respond(ctx, user.ID, chatID, text)
		if err != nil {
			fmt.Printf("error generando respuesta: %v\n", err)
			continue
		}
		chatID = chat.ID
		fmt.Printf("Asistente > %s\n", reply)
	}
}

func ensureUser(ctx context.Context, repo repository.UserRepository, emailAddr string) (domain.User, error) {
	user, err := repo.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:        uuid.NewString(),
		Email:     emailAddr,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
