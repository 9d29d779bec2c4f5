package domain

import "time"

const (
	OrderStatusPending = "pending"
)

// Order es un pedido a domicilio creado por la accion create_delivery_order.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PizzaName string    `json:"pizza_name"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
