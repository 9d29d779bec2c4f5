package domain

import "time"

// Roles de mensajes dentro de un chat. El system prompt nunca se persiste:
// se inyecta al armar la llamada al modelo.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleAction    = "action"
)

// Message es una entrada inmutable del historial. Los mensajes del asistente
// pueden llevar invocaciones de acciones; los mensajes de rol action llevan
// en Content el resultado serializado y en ActionCallID el id que los empareja
// con la invocacion que responden.
type Message struct {
	ID           string       `json:"id"`
	ChatID       string       `json:"chat_id"`
	UserID       string       `json:"user_id"`
	Role         string       `json:"role"`
	Content      string       `json:"content"`
	ActionCalls  []ActionCall `json:"action_calls,omitempty"`
	ActionCallID string       `json:"action_call_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
