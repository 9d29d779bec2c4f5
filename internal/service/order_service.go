package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/repository"
)

// OrderService crea y consulta pedidos a domicilio.
type OrderService struct {
	repo repository.OrderRepository
}

var (
	ErrOrderServiceNotConfigured = errors.New("order service not configured")
	ErrOrderInvalidInput         = errors.New("order invalid input")
)

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

func (s *OrderService) PlaceOrder(ctx context.Context, userID, pizzaName, address string) (domain.Order, error) {
	if s == nil || s.repo == nil {
		return domain.Order{}, ErrOrderServiceNotConfigured
	}

	userID = strings.TrimSpace(userID)
	pizzaName = strings.TrimSpace(pizzaName)
	address = strings.TrimSpace(address)
	if userID == "" || pizzaName == "" || address == "" {
		return domain.Order{}, ErrOrderInvalidInput
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		PizzaName: pizzaName,
		Address:   address,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if s == nil || s.repo == nil {
		return nil, ErrOrderServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.Order{}, nil
	}
	return s.repo.ListByUserID(ctx, userID)
}
