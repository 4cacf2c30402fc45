package models

import (
	"time"

	"github.com/gocql/gocql"
)

// WishlistItem est la trace durable d'un favori dans ScyllaDB.
type WishlistItem struct {
	UserID    string     `json:"user_id" db:"user_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	AddedAt   time.Time  `json:"added_at" db:"added_at"`
}
