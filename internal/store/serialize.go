package store

import (
	"encoding/json"

	"orebi_back_end/internal/models"
)

// Les paniers et wishlists sont persistés dans Redis sous forme de blobs JSON
// ([]models.CartItem), exactement comme les lisent les handlers HTTP.

func marshalSession(s models.Session) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeItems décode un blob JSON de panier ou de wishlist. Un blob vide
// ou illisible donne une liste vide plutôt qu'une erreur : un panier
// corrompu ne doit jamais bloquer l'utilisateur.
func DecodeItems(data string) []models.CartItem {
	if data == "" {
		return nil
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}

// EncodeItems sérialise une liste d'articles pour Redis.
func EncodeItems(items []models.CartItem) []byte {
	data, _ := json.Marshal(items)
	return data
}
