package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pizzeria-agent/internal/service"
)

// AgentHandler mantiene dependencias para los endpoints conversacionales.
type AgentHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
}

// NewAgentHandler crea una instancia de AgentHandler con dependencias necesarias.
func NewAgentHandler(logger *zap.Logger, chatServ *service.ChatService) *AgentHandler {
	return &AgentHandler{
		logger:   logger,
		chatServ: chatServ,
	}
}

// PostMessage maneja POST /agent: un turno de conversacion con el asistente.
// Si chat_id viene vacio se abre un chat nuevo.
func (h *AgentHandler) PostMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		ChatID  string `json:"chat_id"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid agent request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	chat, reply, err := h.chatServ.Respond(c.Request.Context(), claims.UserID, req.ChatID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		case errors.Is(err, service.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		case errors.Is(err, service.ErrChatForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "chat belongs to another user"})
			return
		default:
			h.logger.Error("agent turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "agent processing failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":  chat.ID,
		"response": reply,
	})
}

// ListChats maneja GET /chats.
func (h *AgentHandler) ListChats(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	chats, err := h.chatServ.ListChats(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list chats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetHistory maneja GET /chats/:id/messages.
func (h *AgentHandler) GetHistory(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	messages, err := h.chatServ.History(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		case errors.Is(err, service.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		case errors.Is(err, service.ErrChatForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "chat belongs to another user"})
			return
		default:
			h.logger.Error("chat history failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
