package banner

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const bannersCacheKey = "banners:active"

func fetchBanners() ([]models.Banner, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT banner_id, title, image_url, background_color, status, position, created_at FROM banners`).Iter()

	var banners []models.Banner
	var b models.Banner
	for iter.Scan(&b.ID, &b.Title, &b.ImageURL, &b.BackgroundColor, &b.Status, &b.Position, &b.CreatedAt) {
		banners = append(banners, b)
		b = models.Banner{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return banners, nil
}

// GetActiveBanners renvoie les bannières actives du carrousel, triées par
// position. Les bannières "Inactive" ne sortent jamais d'ici.
// GET /api/banner
func GetActiveBanners(c *gin.Context) {
	ctx := context.Background()

	if val, err := database.Redis.Get(ctx, bannersCacheKey).Result(); err == nil && val != "" {
		var cached []models.Banner
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	banners, err := fetchBanners()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture bannières"})
		return
	}

	active := banners[:0:0]
	for _, b := range banners {
		if b.Status == "Active" {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })

	data, _ := json.Marshal(active)
	database.Redis.Set(ctx, bannersCacheKey, data, 10*time.Minute)

	c.JSON(http.StatusOK, active)
}

// CreateBanner crée une bannière (admin). L'image part dans MinIO quand
// elle est envoyée en multipart, sinon une URL existante est acceptée.
// POST /api/banner
func CreateBanner(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'title' est obligatoire"})
		return
	}

	imageURL := c.PostForm("image_url")
	var file *multipart.FileHeader
	if f, err := c.FormFile("image"); err == nil {
		file = f
	}
	if file != nil {
		url, err := services.UploadImage("banners", file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
			return
		}
		imageURL = url
	}
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image obligatoire"})
		return
	}

	status := c.DefaultPostForm("status", "Active")
	if status != "Active" && status != "Inactive" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	position := 0
	if existing, err := fetchBanners(); err == nil {
		position = len(existing)
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	b := models.Banner{
		ID:              gocql.TimeUUID(),
		Title:           title,
		ImageURL:        imageURL,
		BackgroundColor: c.PostForm("background_color"),
		Status:          status,
		Position:        position,
		CreatedAt:       &now,
	}

	if err := session.Query(`INSERT INTO banners (banner_id, title, image_url, background_color, status, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.ImageURL, b.BackgroundColor, b.Status, b.Position, b.CreatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création bannière"})
		return
	}

	database.Redis.Del(context.Background(), bannersCacheKey)
	c.JSON(http.StatusCreated, b)
}

// UpdateBannerStatus active ou désactive une bannière (admin).
// PATCH /api/banner/:id/status
func UpdateBannerStatus(c *gin.Context) {
	bannerUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bannière invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Status != "Active" && req.Status != "Inactive") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`UPDATE banners SET status = ? WHERE banner_id = ?`, req.Status, bannerUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour bannière"})
		return
	}

	database.Redis.Del(context.Background(), bannersCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Bannière mise à jour", "status": req.Status})
}

// DeleteBanner supprime une bannière (admin).
// DELETE /api/banner/:id
func DeleteBanner(c *gin.Context) {
	bannerUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bannière invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`DELETE FROM banners WHERE banner_id = ?`, bannerUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression bannière"})
		return
	}

	database.Redis.Del(context.Background(), bannersCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Bannière supprimée"})
}
