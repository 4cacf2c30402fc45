package store

import (
	"context"
	"testing"

	"orebi_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{ShippingFee: 50, FreeThreshold: 500}

// memKV est un stockage clé-valeur en mémoire pour les tests.
type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func item(id string, price float64, qty int) models.CartItem {
	return models.CartItem{ProductID: id, Name: "produit " + id, Price: price, Quantity: qty}
}

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	s := New(testConfig, nil)

	require.NoError(t, s.AddToCart(item("a", 200, 1)))
	require.NoError(t, s.AddToCart(item("a", 200, 2)))
	require.NoError(t, s.AddToCart(item("a", 200, 4)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestAddToCartPreservesInsertionOrder(t *testing.T) {
	s := New(testConfig, nil)

	require.NoError(t, s.AddToCart(item("b", 10, 1)))
	require.NoError(t, s.AddToCart(item("a", 20, 1)))
	require.NoError(t, s.AddToCart(item("c", 30, 1)))
	require.NoError(t, s.AddToCart(item("a", 20, 1)))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ProductID)
	assert.Equal(t, "a", items[1].ProductID)
	assert.Equal(t, "c", items[2].ProductID)
}

func TestAddToCartRejectsInvalidQuantity(t *testing.T) {
	s := New(testConfig, nil)

	assert.ErrorIs(t, s.AddToCart(item("a", 10, 0)), ErrInvalidQuantity)
	assert.ErrorIs(t, s.AddToCart(item("a", 10, -3)), ErrInvalidQuantity)
	assert.Empty(t, s.Items())
}

func TestIncreaseQuantity(t *testing.T) {
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("a", 10, 1)))

	s.IncreaseQuantity("a")
	assert.Equal(t, 2, s.Items()[0].Quantity)

	// produit absent : no-op silencieux
	s.IncreaseQuantity("zzz")
	require.Len(t, s.Items(), 1)
}

func TestDecreaseQuantityFloorsAtOne(t *testing.T) {
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("a", 10, 2)))

	s.DecreaseQuantity("a")
	assert.Equal(t, 1, s.Items()[0].Quantity)

	// plancher : la quantité ne descend jamais sous 1
	s.DecreaseQuantity("a")
	assert.Equal(t, 1, s.Items()[0].Quantity)
	require.Len(t, s.Items(), 1)
}

func TestDecreaseQuantityMissingIsNoop(t *testing.T) {
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("a", 10, 1)))

	s.DecreaseQuantity("absent")
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestDeleteItem(t *testing.T) {
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("a", 10, 1)))
	require.NoError(t, s.AddToCart(item("b", 20, 1)))

	s.DeleteItem("a")
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ProductID)

	// absent : no-op
	s.DeleteItem("a")
	assert.Len(t, s.Items(), 1)
}

func TestResetCartZeroesSubtotal(t *testing.T) {
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("a", 99.99, 3)))

	s.ResetCart()
	assert.Empty(t, s.Items())
	assert.Zero(t, s.Subtotal())
}

func TestToggleWishlistIsInvolution(t *testing.T) {
	s := New(testConfig, nil)
	entry := item("a", 10, 1)

	s.ToggleWishlist(entry)
	assert.True(t, s.InWishlist("a"))
	require.Len(t, s.WishlistItems(), 1)

	s.ToggleWishlist(entry)
	assert.False(t, s.InWishlist("a"))
	assert.Empty(t, s.WishlistItems())
}

func TestToggleWishlistNeverDuplicates(t *testing.T) {
	s := New(testConfig, nil)
	entry := item("a", 10, 1)

	s.ToggleWishlist(entry)
	s.ToggleWishlist(entry)
	s.ToggleWishlist(entry)
	assert.Len(t, s.WishlistItems(), 1)
}

func TestShippingPolicy(t *testing.T) {
	s := New(testConfig, nil)

	assert.Equal(t, 0.0, s.ShippingFor(0))
	assert.Equal(t, 50.0, s.ShippingFor(0.01))
	assert.Equal(t, 50.0, s.ShippingFor(300))
	// bornes exactes du seuil
	assert.Equal(t, 50.0, s.ShippingFor(500))
	assert.Equal(t, 0.0, s.ShippingFor(501))
}

func TestTotalsScenario(t *testing.T) {
	// produit A (200) qty 1 puis qty 2 → un seul article, sous-total 600, livraison offerte
	s := New(testConfig, nil)
	require.NoError(t, s.AddToCart(item("A", 200, 1)))
	require.NoError(t, s.AddToCart(item("A", 200, 2)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	totals := s.Totals()
	assert.Equal(t, 600.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.True(t, totals.IsFree)

	// produit B (100) à la place du second ajout de A → 300 + 50 = 350
	s2 := New(testConfig, nil)
	require.NoError(t, s2.AddToCart(item("A", 200, 1)))
	require.NoError(t, s2.AddToCart(item("B", 100, 1)))

	totals = s2.Totals()
	assert.Equal(t, 300.0, totals.Subtotal)
	assert.Equal(t, 50.0, totals.Shipping)
	assert.Equal(t, 350.0, totals.Total)
	assert.False(t, totals.IsFree)
}

func TestLoginMirrorsSession(t *testing.T) {
	kv := newMemKV()
	s := New(testConfig, kv)

	session := models.Session{UserID: "u1", Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, s.Login(context.Background(), session))

	require.NotNil(t, s.Session())
	assert.Equal(t, "u1", s.Session().UserID)
	assert.Contains(t, kv.data, SessionKey("u1"))
	assert.Contains(t, string(kv.data[SessionKey("u1")]), "asha@example.com")
}

func TestLogoutClearsEverything(t *testing.T) {
	kv := newMemKV()
	s := New(testConfig, kv)

	require.NoError(t, s.Login(context.Background(), models.Session{UserID: "u1", Name: "Asha"}))
	require.NoError(t, s.AddToCart(item("a", 10, 2)))
	s.ToggleWishlist(item("b", 20, 1))

	require.NoError(t, s.Logout(context.Background()))

	assert.Nil(t, s.Session())
	assert.Zero(t, s.Subtotal())
	assert.Empty(t, s.Items())
	assert.Empty(t, s.WishlistItems())
	assert.NotContains(t, kv.data, SessionKey("u1"))
}

func TestLogoutAsGuestIsSafe(t *testing.T) {
	s := New(testConfig, newMemKV())
	require.NoError(t, s.AddToCart(item("a", 10, 1)))

	// déconnexion sans session : vide quand même le panier local
	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, s.Items())
}

func TestRestore(t *testing.T) {
	s := New(testConfig, nil)
	s.Restore(
		[]models.CartItem{item("a", 10, 2)},
		[]models.CartItem{item("b", 20, 1)},
		&models.Session{UserID: "u1"},
	)

	assert.Equal(t, 20.0, s.Subtotal())
	assert.True(t, s.InWishlist("b"))
	require.NotNil(t, s.Session())
}

func TestDecodeItems(t *testing.T) {
	items := DecodeItems(string(EncodeItems([]models.CartItem{item("a", 10, 2)})))
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ProductID)

	assert.Nil(t, DecodeItems(""))
	assert.Nil(t, DecodeItems("pas du json"))
}
