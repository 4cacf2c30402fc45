package models

type User struct {
	ID         string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role,omitempty"` // "customer" ou "admin"
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"-"`
}

// Session est l'identité persistée dans Redis entre deux démarrages.
// Une session absente est un état valide : l'utilisateur est un invité.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}
