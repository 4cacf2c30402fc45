package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cart", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/admin", AuthRequired(), RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	w := doRequest(r, "", "/cart")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Connectez-vous d'abord pour accéder à votre panier")
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer a b"} {
		w := doRequest(r, header, "/cart")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequiredRejectsGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	w := doRequest(r, "Bearer pas-un-jwt", "/cart")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsWrongSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "autre-secret")
	r := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doRequest(r, "Bearer "+token, "/cart")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	w := doRequest(r, "Bearer "+token, "/cart")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredSetsClaimsInContext(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "client@example.com",
		"name":    "Client",
		"role":    "customer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doRequest(r, "Bearer "+token, "/cart")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)
}

func TestRequireAdminRejectsCustomer(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id": "u1",
		"role":    "customer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doRequest(r, "Bearer "+token, "/admin")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAcceptsAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := authTestRouter()

	token := signToken(t, jwt.MapClaims{
		"user_id": "a1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	w := doRequest(r, "Bearer "+token, "/admin")

	assert.Equal(t, http.StatusOK, w.Code)
}
