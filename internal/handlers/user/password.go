package user

import (
	"log"
	"net/http"
	"time"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ChangePassword change le mot de passe d'un compte local après
// vérification de l'ancien, puis invalide les caches liés au compte.
// POST /api/auth/change-password
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nouveau mot de passe doit contenir au moins 8 caractères"})
		return
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}
	userUUID := gocql.UUID(uid)

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var email, password, provider string
	if err := session.Query(`SELECT email, password, provider FROM users WHERE user_id = ?`,
		userUUID).Scan(&email, &password, &provider); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Les comptes OAuth n'ont pas de mot de passe local
	if provider != "local" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les comptes OAuth ne peuvent pas changer de mot de passe ici"})
		return
	}

	valid, err := utils.VerifyPassword(input.OldPassword, password)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ancien mot de passe incorrect"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du changement de mot de passe"})
		return
	}

	if err := session.Query(`UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?`,
		hashedPassword, time.Now(), userUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	// L'ancien mot de passe ne doit plus passer par le cache de vérification,
	// et le profil mis en cache porte l'ancien updated_at
	cache.InvalidateAuthCache(email)
	cache.InvalidateUserCache(userID)

	log.Printf("✅ Mot de passe changé pour %s", email)
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe changé avec succès"})
}
