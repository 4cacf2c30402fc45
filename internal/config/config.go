package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// Storefront regroupe les réglages métier du storefront.
type Storefront struct {
	ShippingFee   float64       // frais de livraison fixes
	FreeThreshold float64       // seuil de livraison offerte
	CartTTL       time.Duration // durée de vie d'un panier dans Redis
	SessionTTL    time.Duration // durée de vie d'une session mirrorée
}

// GetStorefront lit la configuration storefront depuis l'environnement,
// avec les valeurs historiques du site en défaut (50 de frais, offert au-delà de 500).
func GetStorefront() Storefront {
	return Storefront{
		ShippingFee:   envFloat("SHIPPING_FEE", 50),
		FreeThreshold: envFloat("FREE_SHIPPING_THRESHOLD", 500),
		CartTTL:       envDuration("CART_TTL", 30*24*time.Hour),
		SessionTTL:    envDuration("SESSION_TTL", 30*24*time.Hour),
	}
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("⚠️ Valeur invalide pour %s, on garde le défaut %.2f", key, fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("⚠️ Valeur invalide pour %s, on garde le défaut %s", key, fallback)
	}
	return fallback
}
