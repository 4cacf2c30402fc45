package user

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/store"
	"orebi_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// newSessionStore construit un Store branché sur Redis pour mirrorer la session.
func newSessionStore() *store.Store {
	sf := config.GetStorefront()
	return store.New(
		store.Config{ShippingFee: sf.ShippingFee, FreeThreshold: sf.FreeThreshold},
		store.RedisKV{Client: database.Redis, TTL: sf.SessionTTL},
	)
}

// SignUp crée un compte client local.
// POST /api/auth/sign-up
func SignUp(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données d'inscription invalides"})
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris ?
	var existingID gocql.UUID
	if err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	userUUID := gocql.UUID(uuid.New())
	now := time.Now()

	if err := database.GetPreparedInsertUser().Bind(
		userUUID, input.Email, hashedPassword, input.Name, "customer", "local", "", now, now,
	).Exec(); err != nil {
		log.Printf("❌ Erreur insertion utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(input.Email, userUUID).Exec(); err != nil {
		// la table d'index est indispensable pour le login : on nettoie
		session.Query("DELETE FROM users WHERE user_id = ?", userUUID).Exec()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{
		ID:       userUUID.String(),
		Name:     input.Name,
		Email:    input.Email,
		Role:     "customer",
		Provider: "local",
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Nouveau compte créé: %s", user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// SignIn authentifie un client local et mirrore la session dans Redis.
// POST /api/auth/sign-in
func SignIn(c *gin.Context) {
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

	// Vérification en cache d'abord, Argon2 ensuite
	valid, _ := cache.GetPasswordHashFromCache(input.Email, input.Password)
	if !valid {
		ok, err := utils.VerifyPassword(input.Password, password)
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
			return
		}
		cache.SetPasswordHashInCache(input.Email, input.Password)
	}

	user := models.User{
		ID:       userUUID.String(),
		Name:     name,
		Email:    email,
		Role:     role,
		Provider: provider,
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	// Miroir durable de la session, restauré par le storefront au rechargement
	s := newSessionStore()
	if err := s.Login(context.Background(), models.Session{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}); err != nil {
		log.Printf("⚠️ Erreur miroir session: %v", err)
	}

	log.Printf("✅ Connexion réussie: %s", user.Email)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// LogOut efface la session mirrorée et, en cascade, le panier et la wishlist.
// POST /api/auth/log-out
func LogOut(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx := context.Background()

	s := newSessionStore()
	s.Restore(nil, nil, &models.Session{UserID: userID})
	if err := s.Logout(ctx); err != nil {
		log.Printf("⚠️ Erreur suppression session: %v", err)
	}

	// Cascade serveur : le panier et la wishlist partent avec la session
	database.Redis.Del(ctx, "cart:"+userID)
	database.Redis.Del(ctx, "wishlist:"+userID)
	database.Redis.Publish(ctx, "cart:"+userID, "cleared")

	log.Printf("👋 Déconnexion: %s", userID)

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Me renvoie le profil de l'utilisateur connecté.
// GET /api/auth/me
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, user)
}
