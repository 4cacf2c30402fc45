package user

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

// BeginOAuth démarre le flux OAuth web (Google ou Facebook).
// GET /api/auth/:provider
func BeginOAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// OAuthCallback termine le flux OAuth, crée le compte au premier passage,
// puis redirige vers le storefront avec le token.
// GET /api/auth/:provider/callback
func OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth %s: %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification " + provider + " échouée"})
		return
	}

	user, err := upsertOAuthUser(provider, gothUser.UserID, gothUser.Email, gothUser.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	s := newSessionStore()
	s.Login(context.Background(), models.Session{
		UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
	})

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontendURL+"/signin?token="+token)
}

// GoogleTokenSignIn échange un code d'autorisation Google contre une session.
// Utilisé par les clients qui ne passent pas par le flux web.
// POST /api/auth/google/token
func GoogleTokenSignIn(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	oauthCfg := config.GoogleOAuthConfig()
	oauthToken, err := oauthCfg.Exchange(context.Background(), input.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code Google invalide"})
		return
	}

	client := oauthCfg.Client(context.Background(), oauthToken)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération profil Google"})
		return
	}
	defer resp.Body.Close()

	var gu struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profil Google illisible"})
		return
	}

	user, err := upsertOAuthUser("google", gu.ID, gu.Email, gu.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	s := newSessionStore()
	s.Login(context.Background(), models.Session{
		UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// upsertOAuthUser retrouve le compte lié au provider, ou le crée au premier login.
func upsertOAuthUser(provider, providerID, email, name string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var userUUID gocql.UUID
	err = database.GetPreparedGetUserByEmail().Bind(email).Scan(&userUUID)
	if err == nil {
		var dbEmail, password, dbName, role, dbProvider, dbProviderID string
		if err := database.GetPreparedGetUserByID().Bind(userUUID).Scan(
			&dbEmail, &password, &dbName, &role, &dbProvider, &dbProviderID); err != nil {
			return nil, err
		}
		return &models.User{
			ID: userUUID.String(), Name: dbName, Email: dbEmail,
			Role: role, Provider: dbProvider, ProviderID: dbProviderID,
		}, nil
	}

	// Premier login social : création du compte sans mot de passe local
	userUUID = gocql.UUID(uuid.New())
	now := time.Now()

	if err := database.GetPreparedInsertUser().Bind(
		userUUID, email, "", name, "customer", provider, providerID, now, now,
	).Exec(); err != nil {
		return nil, err
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(email, userUUID).Exec(); err != nil {
		session.Query("DELETE FROM users WHERE user_id = ?", userUUID).Exec()
		return nil, err
	}

	log.Printf("✅ Compte %s créé via %s", email, provider)

	return &models.User{
		ID: userUUID.String(), Name: name, Email: email,
		Role: "customer", Provider: provider, ProviderID: providerID,
	}, nil
}
