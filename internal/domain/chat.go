package domain

import "time"

// Chat agrupa el historial de una conversacion de un usuario.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
