package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const categoriesCacheKey = "categories:all"

// 🔵 Lister les catégories
func GetAllCategories(c *gin.Context) {
	ctx := context.Background()

	// Cache Redis
	if val, err := database.Redis.Get(ctx, categoriesCacheKey).Result(); err == nil && val != "" {
		var cached []models.Category
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, description, image_url, created_at FROM categories`).Iter()

	var cats []models.Category
	var cat models.Category
	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.CreatedAt) {
		cats = append(cats, cat)
		cat = models.Category{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}

	data, _ := json.Marshal(cats)
	database.Redis.Set(ctx, categoriesCacheKey, data, time.Hour)

	c.JSON(http.StatusOK, cats)
}

// 🟢 Créer une catégorie (admin)
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" || cat.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'slug' sont obligatoires"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cat.ID = gocql.TimeUUID()
	now := time.Now()
	cat.CreatedAt = &now

	if err := session.Query(`INSERT INTO categories (category_id, name, slug, description, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ImageURL, cat.CreatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	database.Redis.Del(context.Background(), categoriesCacheKey)
	c.JSON(http.StatusCreated, cat)
}
