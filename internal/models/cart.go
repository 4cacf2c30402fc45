package models

// CartItem est une ligne du panier. Le prix et le nom sont des copies
// des métadonnées produit au moment de l'ajout, réalignés au checkout.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
	Color     string  `json:"color,omitempty"`
}
