package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pizzeria-agent/internal/config"
	"pizzeria-agent/internal/email"
	"pizzeria-agent/internal/llm"
	"pizzeria-agent/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

type Scenario struct {
	Input            string
	ExpectedBehavior string
}

// Corre escenarios guionados contra el asistente con repos en memoria y un
// LLM real, y hace juzgar cada respuesta por el mismo modelo. Es un smoke
// check manual, no un test automatizado.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, log.Default())

	userID := "user-test"
	orderRepo := &memoryOrderRepo{}
	bookingRepo := &memoryBookingRepo{}
	chatRepo := newMemoryChatRepo()
	messageRepo := &memoryMessageRepo{}

	orderSvc := service.NewOrderService(orderRepo)
	bookingSvc := service.NewBookingService(bookingRepo, nil, email.NewDisabledSender(""), logger)
	registry := service.NewActionRegistry(orderSvc, bookingSvc, newMemoryKnowledge())
	agentSvc := service.NewAgentService(llmClient, registry, logger, cfg.AgentMaxIterations)
	chatSvc := service.NewChatService(chatRepo, messageRepo, agentSvc, logger)

	scenarios := []Scenario{
		{
			Input:            "I'd like a Margherita delivered to 742 Evergreen Terrace.",
			ExpectedBehavior: "Ejecuta create_delivery_order con pizza_name=Margherita y la direccion dada, y confirma el pedido.",
		},
		{
			Input:            "Book me.",
			ExpectedBehavior: "No ejecuta ninguna accion con datos inventados; pide hora y nombre para la reserva.",
		},
		{
			Input:            "What's the cheapest pizza you have?",
			ExpectedBehavior: "Consulta la base de conocimiento y responde con la pizza mas barata del menu, sin inventar precios.",
		},
		{
			Input:            "Reserve a table for Ana tomorrow at 19:30.",
			ExpectedBehavior: "Ejecuta book_table con name=Ana y la hora dada, y confirma la reserva.",
		},
	}

	var totalBehavior, totalGrounded int
	for _, sc := range scenarios {
		fmt.Printf("%s[Input]%s %s\n", colorCyan, colorReset, sc.Input)

		before := len(messageRepo.msgs)
		_, reply, err := chatSvc.Respond(ctx, userID, "", sc.Input)
		if err != nil {
			log.Fatalf("agent turn failed: %v", err)
		}
		fmt.Printf("%s[Asistente]%s %s\n", colorGreen, colorReset, reply)

		var actions []string
		for _, msg := range messageRepo.msgs[before:] {
			for _, call := range msg.ActionCalls {
				actions = append(actions, call.Name)
			}
		}

		jr, err := evaluateResponse(ctx, llmClient, sc, reply, actions)
		if err != nil {
			log.Fatalf("judge failed: %v", err)
		}

		fmt.Printf("%sJuez%s %q\n", colorCyan, colorReset, jr.Reasoning)
		fmt.Printf("Scores: Comportamiento %d/5 | Fundamento %d/5\n\n", jr.BehaviorScore, jr.GroundedScore)

		totalBehavior += jr.BehaviorScore
		totalGrounded += jr.GroundedScore
	}

	n := len(scenarios)
	fmt.Println("==== Promedios ====")
	fmt.Printf("Comportamiento: %.2f/5 | Fundamento: %.2f/5\n",
		float64(totalBehavior)/float64(n), float64(totalGrounded)/float64(n))

	fmt.Printf("Pedidos creados: %d | Reservas creadas: %d\n", len(orderRepo.orders), len(bookingRepo.bookings))
}
