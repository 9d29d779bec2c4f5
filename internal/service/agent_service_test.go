package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"pizzeria-agent/internal/domain"
	"pizzeria-agent/internal/llm"
)

type recordingOrderPlacer struct {
	orders []domain.Order
	err    error
}

func (r *recordingOrderPlacer) PlaceOrder(_ context.Context, userID, pizzaName, address string) (domain.Order, error) {
	if r.err != nil {
		return domain.Order{}, r.err
	}
	order := domain.Order{
		ID:        "order-1",
		UserID:    userID,
		PizzaName: pizzaName,
		Address:   address,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	r.orders = append(r.orders, order)
	return order, nil
}

type recordingTableBooker struct {
	bookings []domain.Booking
	err      error
}

func (r *recordingTableBooker) BookTable(_ context.Context, userID, bookedFor, guestName string) (domain.Booking, error) {
	if r.err != nil {
		return domain.Booking{}, r.err
	}
	booking := domain.Booking{
		ID:        "booking-1",
		UserID:    userID,
		Time:      bookedFor,
		Name:      guestName,
		CreatedAt: time.Now().UTC(),
	}
	r.bookings = append(r.bookings, booking)
	return booking, nil
}

type recordingKnowledgeSearcher struct {
	queries []string
	matches []domain.KnowledgeMatch
	err     error
}

func (r *recordingKnowledgeSearcher) Search(_ context.Context, query string) ([]domain.KnowledgeMatch, error) {
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.matches, nil
}

func newTestRegistry() (*ActionRegistry, *recordingOrderPlacer, *recordingTableBooker, *recordingKnowledgeSearcher) {
	orders := &recordingOrderPlacer{}
	bookings := &recordingTableBooker{}
	knowledge := &recordingKnowledgeSearcher{}
	return NewActionRegistry(orders, bookings, knowledge), orders, bookings, knowledge
}

func userMessage(content string) domain.Message {
	return domain.Message{
		ID:        "m1",
		ChatID:    "c1",
		UserID:    "u1",
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func orderToolCall(id, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: "function",
		Function: llm.FunctionCall{
			Name:      domain.ActionNameCreateDeliveryOrder,
			Arguments: args,
		},
	}
}

func TestAgentAdvance_PlainReply(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{Content: "Hi! Want a pizza or a table?"},
	}}
	registry, _, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, reply, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("hello")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if reply != "Hi! Want a pizza or a table?" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(produced) != 1 || produced[0].Role != domain.RoleAssistant {
		t.Fatalf("expected single assistant message, got %+v", produced)
	}
}

func TestAgentAdvance_OrderFlow(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{orderToolCall("call-1", `{"pizza_name":"Margherita","address":"742 Evergreen Terrace"}`)}},
		{Content: "Done! Your order id is order-1."},
	}}
	registry, orders, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, reply, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("Margherita to 742 Evergreen Terrace")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !strings.Contains(reply, "order-1") {
		t.Fatalf("expected order id in reply, got %q", reply)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("expected one order placed, got %d", len(orders.orders))
	}
	if orders.orders[0].PizzaName != "Margherita" || orders.orders[0].Address != "742 Evergreen Terrace" {
		t.Fatalf("unexpected order: %+v", orders.orders[0])
	}

	// asistente con invocacion + resultado + respuesta terminal
	if len(produced) != 3 {
		t.Fatalf("expected 3 produced messages, got %d", len(produced))
	}
	if produced[1].Role != domain.RoleAction || produced[1].ActionCallID != "call-1" {
		t.Fatalf("expected paired action result, got %+v", produced[1])
	}
	res, err := domain.DecodeActionResult(produced[1].Content)
	if err != nil {
		t.Fatalf("decode action result: %v", err)
	}
	if res.Status != domain.ActionStatusOK || res.Order == nil || res.Order.OrderID != "order-1" {
		t.Fatalf("unexpected action result: %+v", res)
	}
}

func TestAgentAdvance_EmptyArgsNeverExecute(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{orderToolCall("call-1", `{"pizza_name":"","address":"  "}`)}},
		{Content: "What pizza would you like, and where should we deliver it?"},
	}}
	registry, orders, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, reply, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("order me something")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(orders.orders) != 0 {
		t.Fatalf("expected no orders placed, got %d", len(orders.orders))
	}
	if !strings.Contains(strings.ToLower(reply), "what pizza") {
		t.Fatalf("expected clarifying question, got %q", reply)
	}

	res, err := domain.DecodeActionResult(produced[1].Content)
	if err != nil {
		t.Fatalf("decode action result: %v", err)
	}
	if res.Status != domain.ActionStatusError {
		t.Fatalf("expected error result, got %+v", res)
	}
	if !strings.Contains(res.Error, "address") || !strings.Contains(res.Error, "pizza_name") {
		t.Fatalf("expected missing args in error, got %q", res.Error)
	}
}

func TestAgentAdvance_MixedBatchExecutesOnlyValid(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{
			orderToolCall("call-1", `{"pizza_name":"Margherita","address":"742 Evergreen Terrace"}`),
			orderToolCall("call-2", `{"pizza_name":"Pepperoni"}`),
		}},
		{Content: "Margherita ordered. What address should the Pepperoni go to?"},
	}}
	registry, orders, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, _, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("two pizzas")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(orders.orders))
	}

	// un resultado por invocacion, en el orden del lote
	var results []domain.ActionResult
	for _, msg := range produced {
		if msg.Role == domain.RoleAction {
			res, err := domain.DecodeActionResult(msg.Content)
			if err != nil {
				t.Fatalf("decode action result: %v", err)
			}
			results = append(results, res)
		}
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 action results, got %d", len(results))
	}
	if results[0].CallID != "call-1" || results[0].Status != domain.ActionStatusOK {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].CallID != "call-2" || results[1].Status != domain.ActionStatusError {
		t.Fatalf("unexpected second result: %+v", results[1])
	}
}

func TestAgentAdvance_UnknownActionBecomesErrorResult(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{
			ID:       "call-1",
			Type:     "function",
			Function: llm.FunctionCall{Name: "cancel_order", Arguments: `{"order_id":"x"}`},
		}}},
		{Content: "Sorry, I can't cancel orders. I can place orders, book tables or answer questions."},
	}}
	registry, _, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, _, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("cancel my order")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	res, err := domain.DecodeActionResult(produced[1].Content)
	if err != nil {
		t.Fatalf("decode action result: %v", err)
	}
	if res.Status != domain.ActionStatusError || !strings.Contains(res.Error, "unknown action") {
		t.Fatalf("expected unknown action error, got %+v", res)
	}
}

func TestAgentAdvance_KnowledgeSearch(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{
			ID:       "call-1",
			Type:     "function",
			Function: llm.FunctionCall{Name: domain.ActionNameSearchKnowledgeBase, Arguments: `{"query":"cheapest pizza"}`},
		}}},
		{Content: "The cheapest pizza is the Margherita at $9.50."},
	}}
	registry, _, _, knowledge := newTestRegistry()
	knowledge.matches = []domain.KnowledgeMatch{{
		Type:     domain.KnowledgeSourceMenu,
		Name:     "Margherita",
		PriceUSD: "9.50",
		Detail:   "Menu item: Margherita (category: Pizza). Description: Classic. Price: $9.50 USD.",
	}}
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	produced, reply, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("what's the cheapest pizza?")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(knowledge.queries) != 1 || knowledge.queries[0] != "cheapest pizza" {
		t.Fatalf("expected knowledge query, got %v", knowledge.queries)
	}
	if !strings.Contains(reply, "Margherita") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	res, err := domain.DecodeActionResult(produced[1].Content)
	if err != nil {
		t.Fatalf("decode action result: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Name != "Margherita" {
		t.Fatalf("unexpected matches: %+v", res.Matches)
	}
}

func TestAgentAdvance_IterationCapReturnsFallback(t *testing.T) {
	// El modelo insiste con invocaciones invalidas; el ciclo corta en el tope y
	// devuelve un fallback en vez de colgarse.
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{orderToolCall("call-1", `{}`)}},
	}}
	registry, orders, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 2)

	produced, reply, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("pizza")})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(orders.orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders.orders))
	}
	if reply != agentFallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
	last := produced[len(produced)-1]
	if last.Role != domain.RoleAssistant || last.Content != agentFallbackReply {
		t.Fatalf("expected terminal fallback message, got %+v", last)
	}
	// dos iteraciones = dos llamadas al modelo
	if len(mock.Calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(mock.Calls))
	}
}

func TestAgentAdvance_LLMErrorPropagates(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("upstream down")}
	registry, _, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	_, _, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("hello")})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestAgentAdvance_ActionResultsVisibleToModel(t *testing.T) {
	mock := &llm.MockClient{Responses: []llm.ChatResult{
		{ToolCalls: []llm.ToolCall{orderToolCall("call-1", `{"pizza_name":"Margherita","address":"1 Main St"}`)}},
		{Content: "Order placed."},
	}}
	registry, _, _, _ := newTestRegistry()
	svc := NewAgentService(mock, registry, zap.NewNop(), 0)

	if _, _, err := svc.Advance(context.Background(), "c1", "u1", []domain.Message{userMessage("pizza please")}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// La segunda llamada debe incluir el tool result emparejado por id.
	second := mock.Calls[1]
	var sawToolResult bool
	for _, msg := range second {
		if msg.Role == "tool" && msg.ToolCallID == "call-1" {
			sawToolResult = true
		}
	}
	if !sawToolResult {
		t.Fatalf("expected tool result in second model call")
	}
	if second[0].Role != "system" {
		t.Fatalf("expected system prompt first, got %q", second[0].Role)
	}
}
