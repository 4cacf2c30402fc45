package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetStorefrontDefaults(t *testing.T) {
	sf := GetStorefront()

	assert.Equal(t, 50.0, sf.ShippingFee)
	assert.Equal(t, 500.0, sf.FreeThreshold)
	assert.Equal(t, 30*24*time.Hour, sf.CartTTL)
}

func TestGetStorefrontFromEnv(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "5.99")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "120")
	t.Setenv("CART_TTL", "72h")

	sf := GetStorefront()
	assert.Equal(t, 5.99, sf.ShippingFee)
	assert.Equal(t, 120.0, sf.FreeThreshold)
	assert.Equal(t, 72*time.Hour, sf.CartTTL)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "pas-un-nombre")
	t.Setenv("CART_TTL", "pas-une-durée")

	sf := GetStorefront()
	assert.Equal(t, 50.0, sf.ShippingFee)
	assert.Equal(t, 30*24*time.Hour, sf.CartTTL)
}
