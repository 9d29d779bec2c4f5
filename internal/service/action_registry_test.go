package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pizzeria-agent/internal/domain"
)

func TestActionRegistryMissingArgs(t *testing.T) {
	registry, _, _, _ := newTestRegistry()

	cases := []struct {
		name    string
		call    domain.ActionCall
		missing []string
	}{
		{
			name: "order complete",
			call: domain.ActionCall{Name: domain.ActionNameCreateDeliveryOrder, Args: map[string]string{
				"pizza_name": "Margherita", "address": "1 Main St",
			}},
		},
		{
			name:    "order empty args",
			call:    domain.ActionCall{Name: domain.ActionNameCreateDeliveryOrder, Args: map[string]string{}},
			missing: []string{"address", "pizza_name"},
		},
		{
			name: "order whitespace only",
			call: domain.ActionCall{Name: domain.ActionNameCreateDeliveryOrder, Args: map[string]string{
				"pizza_name": "  ", "address": "1 Main St",
			}},
			missing: []string{"pizza_name"},
		},
		{
			name:    "booking missing name",
			call:    domain.ActionCall{Name: domain.ActionNameBookTable, Args: map[string]string{"time": "19:30"}},
			missing: []string{"name"},
		},
		{
			name:    "search missing query",
			call:    domain.ActionCall{Name: domain.ActionNameSearchKnowledgeBase, Args: map[string]string{}},
			missing: []string{"query"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := registry.MissingArgs(tc.call)
			if len(got) != len(tc.missing) {
				t.Fatalf("expected missing %v, got %v", tc.missing, got)
			}
			for i := range got {
				if got[i] != tc.missing[i] {
					t.Fatalf("expected missing %v, got %v", tc.missing, got)
				}
			}
		})
	}
}

func TestActionRegistryExecute_UnknownAction(t *testing.T) {
	registry, orders, bookings, _ := newTestRegistry()

	res := registry.Execute(context.Background(), "u1", domain.ActionCall{
		ID:   "call-1",
		Name: "refund_order",
		Args: map[string]string{"order_id": "x"},
	})
	if res.Status != domain.ActionStatusError {
		t.Fatalf("expected error result, got %+v", res)
	}
	if res.CallID != "call-1" {
		t.Fatalf("expected paired call id, got %q", res.CallID)
	}
	if len(orders.orders) != 0 || len(bookings.bookings) != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestActionRegistryExecute_BookTable(t *testing.T) {
	registry, _, bookings, _ := newTestRegistry()

	res := registry.Execute(context.Background(), "u1", domain.ActionCall{
		ID:   "call-1",
		Name: domain.ActionNameBookTable,
		Args: map[string]string{"time": " tomorrow 19:30 ", "name": " Ana "},
	})
	if res.Status != domain.ActionStatusOK || res.Booking == nil {
		t.Fatalf("expected booking result, got %+v", res)
	}
	if res.Booking.Time != "tomorrow 19:30" || res.Booking.Name != "Ana" {
		t.Fatalf("expected trimmed args, got %+v", res.Booking)
	}
	if len(bookings.bookings) != 1 {
		t.Fatalf("expected one booking, got %d", len(bookings.bookings))
	}
}

func TestActionRegistryExecute_HandlerFailure(t *testing.T) {
	registry, orders, _, _ := newTestRegistry()
	orders.err = errors.New("db down")

	res := registry.Execute(context.Background(), "u1", domain.ActionCall{
		ID:   "call-1",
		Name: domain.ActionNameCreateDeliveryOrder,
		Args: map[string]string{"pizza_name": "Margherita", "address": "1 Main St"},
	})
	if res.Status != domain.ActionStatusError {
		t.Fatalf("expected error result, got %+v", res)
	}
	if strings.Contains(res.Error, "db down") {
		t.Fatalf("internal error must not leak to the model: %q", res.Error)
	}
}

func TestActionRegistryDefinitions(t *testing.T) {
	registry, _, _, _ := newTestRegistry()

	defs := registry.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 action definitions, got %d", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
		if d.Parameters["type"] != "object" {
			t.Fatalf("expected object schema for %s", d.Name)
		}
	}
	for _, want := range []string{
		domain.ActionNameCreateDeliveryOrder,
		domain.ActionNameBookTable,
		domain.ActionNameSearchKnowledgeBase,
	} {
		if !names[want] {
			t.Fatalf("missing definition for %s", want)
		}
	}
}
