package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Banner est une bannière du carrousel de la page d'accueil.
// Seules les bannières avec le statut "Active" sont renvoyées au storefront.
type Banner struct {
	ID              gocql.UUID `json:"id"`
	Title           string     `json:"title"`
	ImageURL        string     `json:"image_url"`
	BackgroundColor string     `json:"background_color,omitempty"`
	Status          string     `json:"status"` // "Active" ou "Inactive"
	Position        int        `json:"position"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}
