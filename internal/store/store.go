package store

import (
	"context"
	"errors"

	"orebi_back_end/internal/models"
)

var (
	// ErrInvalidQuantity est renvoyée quand une quantité <= 0 est passée à AddToCart
	ErrInvalidQuantity = errors.New("quantité invalide")
)

// Store contient l'état panier + wishlist + session d'un utilisateur.
// Toutes les mutations sont synchrones et en mémoire ; la seule écriture
// externe est le miroir de la session dans un stockage clé-valeur durable
// (Redis en production, une map en test).
//
// Le Store n'est pas partagé entre goroutines : chaque requête hydrate son
// propre Store depuis Redis, applique la mutation, puis persiste le résultat.
type Store struct {
	items    []models.CartItem
	wishlist []models.CartItem
	session  *models.Session

	cfg Config
	kv  KV
}

// Config regroupe les constantes de la politique de livraison.
type Config struct {
	ShippingFee   float64 // frais fixes quand 0 < sous-total <= seuil
	FreeThreshold float64 // livraison offerte au-delà de ce seuil
}

// KV est le stockage durable dans lequel la session est mirrorée
// à chaque login/logout.
type KV interface {
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// SessionKey est la clé Redis sous laquelle la session utilisateur est mirrorée.
func SessionKey(userID string) string {
	return "session:" + userID
}

// New crée un Store vide. kv peut être nil : la session n'est alors pas persistée.
func New(cfg Config, kv KV) *Store {
	return &Store{cfg: cfg, kv: kv}
}

// Restore hydrate le Store depuis un état précédemment persisté.
func (s *Store) Restore(items []models.CartItem, wishlist []models.CartItem, session *models.Session) {
	s.items = items
	s.wishlist = wishlist
	s.session = session
}

// ================== Panier ==================

// AddToCart ajoute un article au panier. Si le produit y figure déjà, sa
// quantité est incrémentée du montant demandé (accumulation, pas remplacement),
// sinon l'article est ajouté en fin de liste.
func (s *Store) AddToCart(item models.CartItem) error {
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity += item.Quantity
			return nil
		}
	}
	s.items = append(s.items, item)
	return nil
}

// IncreaseQuantity incrémente la quantité d'un article de 1.
// No-op si le produit est absent du panier.
func (s *Store) IncreaseQuantity(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			return
		}
	}
}

// DecreaseQuantity décrémente la quantité de 1, avec un plancher à 1 :
// un article ne disparaît jamais par décrément, seule DeleteItem le retire.
// No-op si le produit est absent du panier.
func (s *Store) DecreaseQuantity(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			if s.items[i].Quantity > 1 {
				s.items[i].Quantity--
			}
			return
		}
	}
}

// DeleteItem retire un article du panier. No-op si le produit est absent.
func (s *Store) DeleteItem(productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ResetCart vide le panier sans condition.
func (s *Store) ResetCart() {
	s.items = nil
}

// Items renvoie une copie des articles du panier, dans l'ordre d'insertion.
func (s *Store) Items() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// ================== Wishlist ==================

// ToggleWishlist ajoute l'article à la wishlist s'il en est absent, le retire
// s'il y figure. Deux appels successifs avec le même article sont donc neutres.
func (s *Store) ToggleWishlist(item models.CartItem) {
	for i := range s.wishlist {
		if s.wishlist[i].ProductID == item.ProductID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			return
		}
	}
	s.wishlist = append(s.wishlist, item)
}

// InWishlist indique si un produit figure dans la wishlist.
func (s *Store) InWishlist(productID string) bool {
	for i := range s.wishlist {
		if s.wishlist[i].ProductID == productID {
			return true
		}
	}
	return false
}

// WishlistItems renvoie une copie de la wishlist.
func (s *Store) WishlistItems() []models.CartItem {
	out := make([]models.CartItem, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

// ================== Totaux ==================

// Subtotal renvoie la somme prix × quantité sur tout le panier.
func (s *Store) Subtotal() float64 {
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ShippingFor applique la politique de livraison : 0 pour un panier vide,
// frais fixes jusqu'au seuil inclus, offerte au-delà.
func (s *Store) ShippingFor(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if subtotal > s.cfg.FreeThreshold {
		return 0
	}
	return s.cfg.ShippingFee
}

// Totals calcule sous-total, frais de livraison et total en une passe.
func (s *Store) Totals() models.ShippingCalculation {
	subtotal := s.Subtotal()
	shipping := s.ShippingFor(subtotal)
	return models.ShippingCalculation{
		Subtotal:      subtotal,
		Shipping:      shipping,
		Total:         subtotal + shipping,
		FreeThreshold: s.cfg.FreeThreshold,
		IsFree:        subtotal > 0 && shipping == 0,
	}
}

// ================== Session ==================

// Login installe la session et la mirrore dans le stockage durable.
func (s *Store) Login(ctx context.Context, session models.Session) error {
	s.session = &session
	if s.kv == nil {
		return nil
	}
	data, err := marshalSession(session)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SessionKey(session.UserID), data)
}

// Logout efface la session et, en cascade, le panier et la wishlist,
// puis supprime la session mirrorée. L'état vidé est l'état persisté.
func (s *Store) Logout(ctx context.Context) error {
	session := s.session
	s.session = nil
	s.items = nil
	s.wishlist = nil

	if s.kv == nil || session == nil {
		return nil
	}
	return s.kv.Del(ctx, SessionKey(session.UserID))
}

// Session renvoie la session courante, ou nil pour un invité.
func (s *Store) Session() *models.Session {
	return s.session
}
