package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

func adminSessionKey(adminID string) string {
	return "admin_session:" + adminID
}

// AdminLogin authentifie un administrateur. La session admin vit sous sa
// propre clé Redis, séparée de la session client.
// POST /api/auth/admin-login
func AdminLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	var userUUID gocql.UUID
	if err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&userUUID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var email, password, name, role, provider, providerID string
	if err := database.GetPreparedGetUserByID().Bind(userUUID).Scan(
		&email, &password, &name, &role, &provider, &providerID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		return
	}

	valid, _ := cache.GetPasswordHashFromCache(input.Email, input.Password)
	if !valid {
		ok, err := utils.VerifyPassword(input.Password, password)
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
			return
		}
		cache.SetPasswordHashInCache(input.Email, input.Password)
	}

	admin := models.User{
		ID:       userUUID.String(),
		Name:     name,
		Email:    email,
		Role:     role,
		Provider: provider,
	}

	token, err := utils.GenerateJWT(admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	sessionData, _ := json.Marshal(models.Session{
		UserID: admin.ID,
		Name:   admin.Name,
		Email:  admin.Email,
		Role:   admin.Role,
	})
	sf := config.GetStorefront()
	if err := database.Redis.Set(context.Background(), adminSessionKey(admin.ID), sessionData, sf.SessionTTL).Err(); err != nil {
		log.Printf("⚠️ Erreur miroir session admin: %v", err)
	}

	log.Printf("✅ Connexion admin: %s", admin.Email)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": admin.ID,
		"email":  admin.Email,
		"name":   admin.Name,
		"role":   admin.Role,
	})
}

// AdminLogout supprime la session admin mirrorée.
// POST /api/auth/admin-logout
func AdminLogout(c *gin.Context) {
	adminID := c.GetString("user_id")
	if adminID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	if err := database.Redis.Del(context.Background(), adminSessionKey(adminID)).Err(); err != nil {
		log.Printf("⚠️ Erreur suppression session admin: %v", err)
	}

	log.Printf("👋 Déconnexion admin: %s", adminID)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}
