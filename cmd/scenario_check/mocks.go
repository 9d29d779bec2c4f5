package main

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"pizzeria-agent/internal/domain"
)

// Repos en memoria para correr los escenarios sin Postgres.

type memoryChatRepo struct {
	chats map[string]domain.Chat
}

func newMemoryChatRepo() *memoryChatRepo {
	return &memoryChatRepo{chats: make(map[string]domain.Chat)}
}

func (m *memoryChatRepo) Create(_ context.Context, chat domain.Chat) error {
	m.chats[chat.ID] = chat
	return nil
}

func (m *memoryChatRepo) GetByID(_ context.Context, id string) (domain.Chat, error) {
	chat, ok := m.chats[id]
	if !ok {
		return domain.Chat{}, pgx.ErrNoRows
	}
	return chat, nil
}

func (m *memoryChatRepo) ListByUserID(_ context.Context, userID string) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, chat := range m.chats {
		if chat.UserID == userID {
			out = append(out, chat)
		}
	}
	return out, nil
}

type memoryMessageRepo struct {
	msgs []domain.Message
}

func (m *memoryMessageRepo) AppendAll(_ context.Context, messages []domain.Message) error {
	m.msgs = append(m.msgs, messages...)
	return nil
}

func (m *memoryMessageRepo) ListByChatID(_ context.Context, chatID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.msgs {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memoryOrderRepo struct {
	orders []domain.Order
}

func (m *memoryOrderRepo) Create(_ context.Context, order domain.Order) error {
	m.orders = append(m.orders, order)
	return nil
}

func (m *memoryOrderRepo) ListByUserID(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type memoryBookingRepo struct {
	bookings []domain.Booking
}

func (m *memoryBookingRepo) Create(_ context.Context, booking domain.Booking) error {
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *memoryBookingRepo) ListByUserID(_ context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// memoryKnowledge busca por solapamiento de palabras sobre un set fijo de
// entradas; alcanza para que el modelo tenga material que citar.
type memoryKnowledge struct {
	matches []domain.KnowledgeMatch
}

func newMemoryKnowledge() *memoryKnowledge {
	return &memoryKnowledge{matches: []domain.KnowledgeMatch{
		{
			Type:     domain.KnowledgeSourceMenu,
			Name:     "Margherita",
			Category: "Pizza",
			PriceUSD: "9.50",
			Detail:   "Menu item: Margherita (category: Pizza). Description: Tomato, mozzarella and basil. Price: $9.50 USD.",
		},
		{
			Type:     domain.KnowledgeSourceMenu,
			Name:     "Pepperoni",
			Category: "Pizza",
			PriceUSD: "11.00",
			Detail:   "Menu item: Pepperoni (category: Pizza). Description: Pepperoni and mozzarella. Price: $11.00 USD.",
		},
		{
			Type:     domain.KnowledgeSourceMenu,
			Name:     "Quattro Formaggi",
			Category: "Pizza",
			PriceUSD: "13.25",
			Detail:   "Menu item: Quattro Formaggi (category: Pizza). Description: Four cheese blend. Price: $13.25 USD.",
		},
		{
			Type:   domain.KnowledgeSourceReview,
			Title:  "Great delivery",
			Date:   "2024-03-02",
			Rating: "5",
			Detail: "Review titled 'Great delivery' on 2024-03-02 rated 5/5: Pizza arrived in 25 minutes, still hot.",
		},
	}}
}

func (m *memoryKnowledge) Search(_ context.Context, query string) ([]domain.KnowledgeMatch, error) {
	words := strings.Fields(strings.ToLower(query))
	var out []domain.KnowledgeMatch
	for _, match := range m.matches {
		detail := strings.ToLower(match.Detail)
		for _, w := range words {
			if strings.Contains(detail, w) {
				out = append(out, match)
				break
			}
		}
	}
	if len(out) == 0 {
		out = m.matches
	}
	return out, nil
}
