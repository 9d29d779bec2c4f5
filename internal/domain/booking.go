package domain

import "time"

// Booking es una reserva de mesa. Time queda como texto libre: se guarda tal
// cual lo expreso el usuario ("19:30", "manana 18:00").
type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Time      string    `json:"time"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
