package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pizzeria-agent/internal/repository"
	"pizzeria-agent/internal/service"
)

// APIHandler expone consultas de carta, pedidos y reservas.
type APIHandler struct {
	logger      *zap.Logger
	menu        repository.MenuRepository
	orderServ   *service.OrderService
	bookingServ *service.BookingService
}

// NewAPIHandler crea una instancia de APIHandler con dependencias necesarias.
func NewAPIHandler(logger *zap.Logger, menu repository.MenuRepository, orderServ *service.OrderService, bookingServ *service.BookingService) *APIHandler {
	return &APIHandler{
		logger:      logger,
		menu:        menu,
		orderServ:   orderServ,
		bookingServ: bookingServ,
	}
}

// ListMenu maneja GET /menu. Es publico.
func (h *APIHandler) ListMenu(c *gin.Context) {
	if h.menu == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "menu not configured"})
		return
	}
	items, err := h.menu.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list menu failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListOrders maneja GET /orders.
func (h *APIHandler) ListOrders(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	orders, err := h.orderServ.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListBookings maneja GET /bookings.
func (h *APIHandler) ListBookings(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	bookings, err := h.bookingServ.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
