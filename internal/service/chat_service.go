package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/repository"
)

// ChatService orquesta un turno de conversacion: carga el historial, corre el
// controlador de dialogo y persiste el turno completo en una sola
// transaccion. Los turnos sobre un mismo chat se serializan con un lock por
// chat para preservar el historial append-only; una cancelacion a mitad de
// turno no deja nada escrito.
type ChatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	agent    *AgentService
	logger   *zap.Logger
	locks    sync.Map // chat id -> *sync.Mutex
}

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrChatInvalidInput         = errors.New("chat invalid input")
	ErrChatNotFound             = errors.New("chat not found")
	ErrChatForbidden            = errors.New("chat belongs to another user")
	ErrAgentProcessing          = errors.New("agent processing failed")
)

func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository, agent *AgentService, logger *zap.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		agent:    agent,
		logger:   logger,
	}
}

// Respond procesa un mensaje entrante del usuario. Si chatID es vacio crea un
// chat nuevo. Devuelve el chat y la respuesta terminal del asistente.
func (s *ChatService) Respond(ctx context.Context, userID, chatID, content string) (domain.Chat, string, error) {
	if s == nil || s.chats == nil || s.messages == nil || s.agent == nil {
		return domain.Chat{}, "", ErrChatServiceNotConfigured
	}

	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	content = strings.TrimSpace(content)
	if userID == "" || content == "" {
		return domain.Chat{}, "", ErrChatInvalidInput
	}

	chat, err := s.resolveChat(ctx, userID, chatID)
	if err != nil {
		return domain.Chat{}, "", err
	}

	mu := s.lockFor(chat.ID)
	mu.Lock()
	defer mu.Unlock()

	transcript, err := s.messages.ListByChatID(ctx, chat.ID)
	if err != nil {
		return domain.Chat{}, "", fmt.Errorf("load transcript: %w", err)
	}

	userMsg := domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		UserID:    userID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	newMessages, reply, err := s.agent.Advance(ctx, chat.ID, userID, append(transcript, userMsg))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("agent turn failed", zap.Error(err), zap.String("chat_id", chat.ID))
		}
		return domain.Chat{}, "", fmt.Errorf("%w: %v", ErrAgentProcessing, err)
	}

	// Commit del turno completo recien al final: mensaje del usuario mas todo
	// lo producido por el controlador.
	turn := append([]domain.Message{userMsg}, newMessages...)
	if err := s.messages.AppendAll(ctx, turn); err != nil {
		return domain.Chat{}, "", fmt.Errorf("persist turn: %w", err)
	}

	return chat, reply, nil
}

func (s *ChatService) resolveChat(ctx context.Context, userID, chatID string) (domain.Chat, error) {
	if chatID == "" {
		chat := domain.Chat{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			return domain.Chat{}, fmt.Errorf("create chat: %w", err)
		}
		return chat, nil
	}

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Chat{}, ErrChatNotFound
		}
		return domain.Chat{}, fmt.Errorf("get chat: %w", err)
	}
	if chat.UserID != userID {
		return domain.Chat{}, ErrChatForbidden
	}
	return chat, nil
}

// History devuelve el historial persistido de un chat del usuario.
func (s *ChatService) History(ctx context.Context, userID, chatID string) ([]domain.Message, error) {
	if s == nil || s.chats == nil || s.messages == nil {
		return nil, ErrChatServiceNotConfigured
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, ErrChatInvalidInput
	}
	chat, err := s.resolveChat(ctx, strings.TrimSpace(userID), chatID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByChatID(ctx, chat.ID)
}

// ListChats lista los chats del usuario, mas reciente primero.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	if s == nil || s.chats == nil {
		return nil, ErrChatServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.Chat{}, nil
	}
	return s.chats.ListByUserID(ctx, userID)
}

func (s *ChatService) lockFor(chatID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
