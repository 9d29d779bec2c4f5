package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pizzeria-agent/internal/config"
	"pizzeria-agent/internal/db"
	"pizzeria-agent/internal/email"
	apihttp "pizzeria-agent/internal/http"
	"pizzeria-agent/internal/llm"
	"pizzeria-agent/internal/repository"
	"pizzeria-agent/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	chatRepo := repository.NewPgChatRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	orderRepo := repository.NewPgOrderRepository(pool)
	bookingRepo := repository.NewPgBookingRepository(pool)
	menuRepo := repository.NewPgMenuRepository(pool)
	knowledgeRepo := repository.NewPgKnowledgeRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, zap.NewStdLog(logger))

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
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

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	agentHandler := apihttp.NewAgentHandler(logger, chatSvc)
	apiHandler := apihttp.NewAPIHandler(logger, menuRepo, orderSvc, bookingSvc)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, agentHandler, apiHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
