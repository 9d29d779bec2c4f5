package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/llm"
)

// AgentService es el controlador de dialogo: alterna llamadas al modelo con
// ejecucion de acciones hasta que el modelo produce una respuesta en texto
// plano. No guarda estado propio; todo lo que produce lo devuelve como
// mensajes nuevos y el llamador decide persistirlos.
type AgentService struct {
	llmClient     llm.LLMClient
	registry      *ActionRegistry
	logger        *zap.Logger
	maxIterations int
}

var ErrAgentNotConfigured = errors.New("agent service not configured")

// defaultMaxIterations acota el ciclo modelo->acciones->modelo. El limite es
// una decision de diseno: el flujo normal usa dos iteraciones (invocacion y
// confirmacion) y cuatro deja margen para una correccion del modelo.
const defaultMaxIterations = 4

func NewAgentService(llmClient llm.LLMClient, registry *ActionRegistry, logger *zap.Logger, maxIterations int) *AgentService {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &AgentService{
		llmClient:     llmClient,
		registry:      registry,
		logger:        logger,
		maxIterations: maxIterations,
	}
}

// Advance corre un turno completo sobre el historial dado (que ya incluye el
// mensaje nuevo del usuario). Devuelve los mensajes producidos en el turno y
// la respuesta terminal del asistente.
func (s *AgentService) Advance(ctx context.Context, chatID, userID string, transcript []domain.Message) ([]domain.Message, string, error) {
	if s == nil || s.llmClient == nil || s.registry == nil {
		return nil, "", ErrAgentNotConfigured
	}

	var produced []domain.Message

	for iteration := 0; iteration < s.maxIterations; iteration++ {
		input := s.buildModelInput(transcript, produced)

		result, err := s.llmClient.Chat(ctx, input, s.registry.Definitions())
		if err != nil {
			return nil, "", fmt.Errorf("llm chat: %w", err)
		}

		// Sin invocaciones: respuesta terminal, fin del ciclo.
		if len(result.ToolCalls) == 0 {
			reply := strings.TrimSpace(result.Content)
			if reply == "" {
				reply = agentFallbackReply
			}
			produced = append(produced, s.newMessage(chatID, userID, domain.RoleAssistant, reply, nil, ""))
			return produced, reply, nil
		}

		calls := parseActionCalls(result.ToolCalls)
		produced = append(produced, s.newMessage(chatID, userID, domain.RoleAssistant, result.Content, calls, ""))

		// Una accion invalida nunca se ejecuta: produce un resultado de
		// error emparejado por id, y el modelo reacciona en la siguiente
		// vuelta (normalmente con una pregunta aclaratoria). Las validas
		// del mismo lote se ejecutan en el orden en que el modelo las listo.
		for _, call := range calls {
			res := s.registry.Execute(ctx, userID, call)
			if res.Status == domain.ActionStatusError && s.logger != nil {
				s.logger.Warn("action not executed",
					zap.String("action", call.Name),
					zap.String("call_id", call.ID),
					zap.String("reason", res.Error),
				)
			}
			produced = append(produced, s.newMessage(chatID, userID, domain.RoleAction, res.Encode(), nil, res.CallID))
		}
	}

	// Tope de iteraciones alcanzado: se devuelve la mejor respuesta parcial
	// disponible en lugar de colgar o fallar.
	reply := lastAssistantText(produced)
	if reply == "" {
		reply = agentFallbackReply
	}
	if s.logger != nil {
		s.logger.Warn("agent loop hit iteration cap",
			zap.String("chat_id", chatID),
			zap.Int("max_iterations", s.maxIterations),
		)
	}
	produced = append(produced, s.newMessage(chatID, userID, domain.RoleAssistant, reply, nil, ""))
	return produced, reply, nil
}

// buildModelInput arma la vista del modelo: system prompt fijo + historial
// persistido + mensajes producidos en este turno.
func (s *AgentService) buildModelInput(transcript, produced []domain.Message) []llm.ChatMessage {
	input := make([]llm.ChatMessage, 0, len(transcript)+len(produced)+1)
	input = append(input, llm.ChatMessage{Role: "system", Content: agentSystemPrompt})

	for _, msg := range transcript {
		input = append(input, toChatMessage(msg))
	}
	for _, msg := range produced {
		input = append(input, toChatMessage(msg))
	}
	return input
}

func toChatMessage(msg domain.Message) llm.ChatMessage {
	switch msg.Role {
	case domain.RoleAction:
		return llm.ChatMessage{
			Role:       "tool",
			Content:    msg.Content,
			ToolCallID: msg.ActionCallID,
		}
	case domain.RoleAssistant:
		out := llm.ChatMessage{Role: "assistant", Content: msg.Content}
		for _, call := range msg.ActionCalls {
			args, err := json.Marshal(call.Args)
			if err != nil {
				args = []byte("{}")
			}
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: llm.FunctionCall{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		return out
	default:
		return llm.ChatMessage{Role: "user", Content: msg.Content}
	}
}

// parseActionCalls convierte las tool calls del modelo en invocaciones del
// dominio, coercionando los argumentos escalares a string.
func parseActionCalls(toolCalls []llm.ToolCall) []domain.ActionCall {
	calls := make([]domain.ActionCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		id := strings.TrimSpace(tc.ID)
		if id == "" {
			id = uuid.NewString()
		}

		args := map[string]string{}
		var raw map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &raw); err == nil {
			for k, v := range raw {
				switch val := v.(type) {
				case nil:
					args[k] = ""
				case string:
					args[k] = val
				default:
					args[k] = fmt.Sprint(val)
				}
			}
		}

		calls = append(calls, domain.ActionCall{
			ID:   id,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return calls
}

func (s *AgentService) newMessage(chatID, userID, role, content string, calls []domain.ActionCall, callID string) domain.Message {
	return domain.Message{
		ID:           uuid.NewString(),
		ChatID:       chatID,
		UserID:       userID,
		Role:         role,
		Content:      content,
		ActionCalls:  calls,
		ActionCallID: callID,
		CreatedAt:    time.Now().UTC(),
	}
}

func lastAssistantText(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant && strings.TrimSpace(messages[i].Content) != "" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
