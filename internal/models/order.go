package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Order struct {
	ID          gocql.UUID  `json:"id"`
	UserID      string      `json:"user_id"`
	StripeID    string      `json:"stripe_id"`
	Items       []OrderItem `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	Shipping    float64     `json:"shipping"`
	AmountTotal float64     `json:"amount_total"`
	Status      string      `json:"status"` // "pending", "paid", "cancelled"
	Address     string      `json:"address"`
	City        string      `json:"city"`
	PostalCode  string      `json:"postal_code"`
	Country     string      `json:"country"`
	Phone       string      `json:"phone"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
