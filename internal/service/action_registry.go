package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/llm"
)

// OrderPlacer crea pedidos a domicilio.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID, pizzaName, address string) (domain.Order, error)
}

// TableBooker registra reservas de mesa.
type TableBooker interface {
	BookTable(ctx context.Context, userID, bookedFor, guestName string) (domain.Booking, error)
}

// KnowledgeSearcher busca en la base de conocimiento de menu y resenas.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) ([]domain.KnowledgeMatch, error)
}

// ActionRegistry resuelve y ejecuta las acciones que el modelo puede invocar.
// El mapeo nombre->handler es estatico; un nombre desconocido produce un
// resultado de error que vuelve al modelo como mensaje, nunca una falla.
type ActionRegistry struct {
	orders    OrderPlacer
	bookings  TableBooker
	knowledge KnowledgeSearcher
}

func NewActionRegistry(orders OrderPlacer, bookings TableBooker, knowledge KnowledgeSearcher) *ActionRegistry {
	return &ActionRegistry{
		orders:    orders,
		bookings:  bookings,
		knowledge: knowledge,
	}
}

// requiredArgs lista los argumentos obligatorios por accion.
var requiredArgs = map[domain.ActionKind][]string{
	domain.ActionCreateDeliveryOrder: {"pizza_name", "address"},
	domain.ActionBookTable:           {"time", "name"},
	domain.ActionSearchKnowledgeBase: {"query"},
}

// Definitions devuelve los schemas de las acciones para adjuntar al modelo.
func (r *ActionRegistry) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        domain.ActionNameCreateDeliveryOrder,
			Description: "Place a home delivery pizza order.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pizza_name": map[string]any{
						"type":        "string",
						"description": "Pizza name, exactly as the user said it",
					},
					"address": map[string]any{
						"type":        "string",
						"description": "Delivery address in a single line",
					},
				},
				"required": []string{"pizza_name", "address"},
			},
		},
		{
			Name:        domain.ActionNameBookTable,
			Description: "Reserve a table at the pizzeria.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"time": map[string]any{
						"type":        "string",
						"description": "Reservation time, as the user said it ('19:30', 'tomorrow 18:00', ...)",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "Name of the person booking",
					},
				},
				"required": []string{"time", "name"},
			},
		},
		{
			Name:        domain.ActionNameSearchKnowledgeBase,
			Description: "Search the menu and guest review knowledge base. Use it to answer questions about dishes, prices, ingredients, popular items, delivery wait or guest impressions.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Question or keywords to search the menu and reviews",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// MissingArgs devuelve los argumentos obligatorios que faltan, estan vacios o
// son solo espacios. Una lista no vacia significa que la accion no debe
// ejecutarse.
func (r *ActionRegistry) MissingArgs(call domain.ActionCall) []string {
	required, ok := requiredArgs[call.Kind()]
	if !ok {
		return nil
	}
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(call.Args[name]) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Execute despacha una invocacion ya validada. Nunca ejecuta una accion con
// argumentos incompletos: ante datos faltantes o nombre desconocido devuelve
// un resultado de error emparejado por CallID.
func (r *ActionRegistry) Execute(ctx context.Context, userID string, call domain.ActionCall) domain.ActionResult {
	kind := call.Kind()
	if kind == domain.ActionUnknown {
		return errorResult(call.ID, fmt.Sprintf("unknown action: %s", call.Name))
	}

	if missing := r.MissingArgs(call); len(missing) > 0 {
		return errorResult(call.ID, fmt.Sprintf("missing required arguments: %s", strings.Join(missing, ", ")))
	}

	switch kind {
	case domain.ActionCreateDeliveryOrder:
		order, err := r.orders.PlaceOrder(ctx, userID, strings.TrimSpace(call.Args["pizza_name"]), strings.TrimSpace(call.Args["address"]))
		if err != nil {
			return errorResult(call.ID, "could not place the order")
		}
		return domain.ActionResult{
			CallID: call.ID,
			Status: domain.ActionStatusOK,
			Order: &domain.OrderResult{
				OrderID:   order.ID,
				PizzaName: order.PizzaName,
				Address:   order.Address,
			},
		}

	case domain.ActionBookTable:
		booking, err := r.bookings.BookTable(ctx, userID, strings.TrimSpace(call.Args["time"]), strings.TrimSpace(call.Args["name"]))
		if err != nil {
			return errorResult(call.ID, "could not book the table")
		}
		return domain.ActionResult{
			CallID: call.ID,
			Status: domain.ActionStatusOK,
			Booking: &domain.BookingResult{
				BookingID: booking.ID,
				Time:      booking.Time,
				Name:      booking.Name,
			},
		}

	case domain.ActionSearchKnowledgeBase:
		matches, err := r.knowledge.Search(ctx, strings.TrimSpace(call.Args["query"]))
		if err != nil {
			return errorResult(call.ID, "knowledge base search failed")
		}
		return domain.ActionResult{
			CallID:  call.ID,
			Status:  domain.ActionStatusOK,
			Matches: matches,
		}
	}

	return errorResult(call.ID, fmt.Sprintf("unknown action: %s", call.Name))
}

func errorResult(callID, msg string) domain.ActionResult {
	return domain.ActionResult{
		CallID: callID,
		Status: domain.ActionStatusError,
		Error:  msg,
	}
}
