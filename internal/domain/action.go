package domain

import (
	"encoding/json"
	"strings"
)

// ActionKind identifica las acciones conocidas del asistente. El despacho es
// estatico: un nombre desconocido se vuelve ActionUnknown y produce un
// resultado de error, nunca un panic.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionCreateDeliveryOrder
	ActionBookTable
	ActionSearchKnowledgeBase
)

const (
	ActionNameCreateDeliveryOrder = "create_delivery_order"
	ActionNameBookTable           = "book_table"
	ActionNameSearchKnowledgeBase = "search_knowledge_base"
)

func ParseActionKind(name string) ActionKind {
	switch strings.TrimSpace(name) {
	case ActionNameCreateDeliveryOrder:
		return ActionCreateDeliveryOrder
	case ActionNameBookTable:
		return ActionBookTable
	case ActionNameSearchKnowledgeBase:
		return ActionSearchKnowledgeBase
	default:
		return ActionUnknown
	}
}

// ActionCall es una invocacion propuesta por el modelo, pendiente de
// validacion. Args guarda los argumentos ya coercionados a string.
type ActionCall struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

func (c ActionCall) Kind() ActionKind {
	return ParseActionKind(c.Name)
}

const (
	ActionStatusOK    = "ok"
	ActionStatusError = "error"
)

// ActionResult es la salida estructurada de una accion. Se serializa como
// Content de un Message con rol action, emparejado por CallID.
type ActionResult struct {
	CallID  string           `json:"call_id"`
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
	Order   *OrderResult     `json:"order,omitempty"`
	Booking *BookingResult   `json:"booking,omitempty"`
	Matches []KnowledgeMatch `json:"matches,omitempty"`
}

type OrderResult struct {
	OrderID   string `json:"order_id"`
	PizzaName string `json:"pizza_name"`
	Address   string `json:"address"`
}

type BookingResult struct {
	BookingID string `json:"booking_id"`
	Time      string `json:"time"`
	Name      string `json:"name"`
}

// Encode serializa el resultado para guardarlo en un mensaje.
func (r ActionResult) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"status":"error","error":"unencodable result"}`
	}
	return string(data)
}

// DecodeActionResult reconstruye un ActionResult desde el Content de un
// mensaje de rol action.
func DecodeActionResult(content string) (ActionResult, error) {
	var r ActionResult
	err := json.Unmarshal([]byte(content), &r)
	return r, err
}
