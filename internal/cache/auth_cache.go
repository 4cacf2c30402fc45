package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"orebi_back_end/internal/database"
)

const (
	AuthCacheTTL = 15 * time.Minute // cache les vérifications de mot de passe
)

// GetPasswordHashFromCache vérifie si cette combinaison email/mot de passe
// a déjà été validée récemment. Évite de refaire Argon2 à chaque login.
func GetPasswordHashFromCache(email, password string) (bool, error) {
	ctx := context.Background()

	passwordHash := sha256.Sum256([]byte(password))
	cacheKey := "auth:" + email + ":" + hex.EncodeToString(passwordHash[:])

	result, err := database.Redis.Get(ctx, cacheKey).Result()
	if err == nil && result == "valid" {
		return true, nil
	}

	return false, err
}

// SetPasswordHashInCache met en cache une vérification de mot de passe réussie
func SetPasswordHashInCache(email, password string) {
	ctx := context.Background()

	passwordHash := sha256.Sum256([]byte(password))
	cacheKey := "auth:" + email + ":" + hex.EncodeToString(passwordHash[:])

	database.Redis.Set(ctx, cacheKey, "valid", AuthCacheTTL)
}

// InvalidateAuthCache invalide le cache d'authentification pour un email
func InvalidateAuthCache(email string) {
	ctx := context.Background()

	pattern := "auth:" + email + ":*"
	iter := database.Redis.Scan(ctx, 0, pattern, 100).Iterator()

	for iter.Next(ctx) {
		database.Redis.Del(ctx, iter.Val())
	}
}
