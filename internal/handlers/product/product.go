package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/carousel"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/services"
)

const allProductsCacheKey = "products:all"

// fetchAllProducts retourne le catalogue complet, via le cache Redis
// quand il est chaud.
func fetchAllProducts(ctx context.Context) ([]models.Product, error) {
	if val, err := database.Redis.Get(ctx, allProductsCacheKey).Result(); err == nil && val != "" {
		var cached []models.Product
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT product_id, name, description, price, stock, category_id,
		image_urls, tags, brand, color, badge, is_active, created_at, updated_at FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.ImageURLs, &p.Tags, &p.Brand, &p.Color, &p.Badge, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
		p = models.Product{} // Reset pour la prochaine itération
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, allProductsCacheKey, data, time.Hour)
	}
	return products, nil
}

// GetProducts liste le catalogue avec filtres, tri et pagination.
// GET /api/product?page=1&per_page=12&category=...&brand=...&color=...&min_price=...&max_price=...&sort=...
func GetProducts(c *gin.Context) {
	products, err := fetchAllProducts(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	filtered := products[:0:0]
	categoryID := c.Query("category")
	brand := c.Query("brand")
	color := c.Query("color")
	minPrice, hasMin := parseFloatQuery(c, "min_price")
	maxPrice, hasMax := parseFloatQuery(c, "max_price")

	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if categoryID != "" && p.CategoryID.String() != categoryID {
			continue
		}
		if brand != "" && !strings.EqualFold(p.Brand, brand) {
			continue
		}
		if color != "" && !strings.EqualFold(p.Color, color) {
			continue
		}
		if hasMin && p.Price < minPrice {
			continue
		}
		if hasMax && p.Price > maxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	switch c.DefaultQuery("sort", "newest") {
	case "price_asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price_desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case "name":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	default: // newest
		sort.SliceStable(filtered, func(i, j int) bool {
			ti, tj := time.Time{}, time.Time{}
			if filtered[i].CreatedAt != nil {
				ti = *filtered[i].CreatedAt
			}
			if filtered[j].CreatedAt != nil {
				tj = *filtered[j].CreatedAt
			}
			return ti.After(tj)
		})
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "12"))
	if perPage < 1 || perPage > 100 {
		perPage = 12
	}

	if page < 1 {
		page = 1
	}
	start, end := carousel.PageBounds(len(filtered), page, perPage)
	totalPages := (len(filtered) + perPage - 1) / perPage

	c.JSON(http.StatusOK, models.ProductPage{
		Products:   filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetProductByID renvoie la fiche d'un produit.
// GET /api/product/:id
func GetProductByID(c *gin.Context) {
	id := c.Param("id")
	if _, err := gocql.ParseUUID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	product, err := cache.GetProductFromCache(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// SearchProducts interroge Elasticsearch, avec repli sur un filtrage
// en mémoire du catalogue quand l'index est vide.
// GET /api/product/search?q=
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 🔎 Recherche Elasticsearch prioritaire
	results, err := services.SearchProducts(query)
	if err == nil && len(results) > 0 {
		// URLs signées MinIO pour les vignettes des résultats
		for i := range results {
			urls, ok := results[i]["image_urls"].([]interface{})
			if !ok {
				continue
			}
			signed := make([]string, 0, len(urls))
			for _, u := range urls {
				str, ok := u.(string)
				if !ok || str == "" {
					continue
				}
				if signedURL, err := services.GenerateSignedURL(context.Background(), str, 24*time.Hour); err == nil {
					signed = append(signed, signedURL)
				} else {
					signed = append(signed, str)
				}
			}
			results[i]["image_urls"] = signed
		}
		c.JSON(http.StatusOK, results)
		return
	}

	// 🔁 Fallback : filtrage en mémoire du catalogue
	products, err := fetchAllProducts(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	var matched []models.Product
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if containsIgnoreCase(p.Name, query) || containsIgnoreCase(p.Description, query) ||
			containsIgnoreCase(p.Brand, query) || containsTagsIgnoreCase(p.Tags, query) {
			matched = append(matched, p)
		}
	}

	c.JSON(http.StatusOK, matched)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsTagsIgnoreCase(tags []string, query string) bool {
	for _, tag := range tags {
		if containsIgnoreCase(tag, query) {
			return true
		}
	}
	return false
}

// CreateProduct crée un produit (admin).
// POST /api/product
func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" || p.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom et prix positif obligatoires"})
		return
	}
	if p.CategoryID == (gocql.UUID{}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'category_id' est obligatoire"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Vérifie la catégorie dans ScyllaDB
	var categoryName string
	if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, p.CategoryID).Scan(&categoryName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
		return
	}

	// ✅ Image par défaut stockée dans MinIO
	if len(p.ImageURLs) == 0 || p.ImageURLs[0] == "" {
		p.ImageURLs = []string{services.PublicImageURL("products/" + p.Name + ".jpg")}
	}

	p.ID = gocql.TimeUUID()
	p.IsActive = true
	now := time.Now()
	p.CreatedAt = &now
	p.UpdatedAt = &now

	query := `INSERT INTO products (product_id, name, description, price, stock, category_id,
		image_urls, tags, brand, color, badge, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID,
		p.ImageURLs, p.Tags, p.Brand, p.Color, p.Badge, p.IsActive, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)
	database.Redis.Del(context.Background(), allProductsCacheKey)

	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct modifie un produit existant (admin).
// PUT /api/product/:id
func UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	productUUID, err := gocql.ParseUUID(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	existing, err := cache.GetProductFromCache(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Stock       *int      `json:"stock"`
		ImageURLs   *[]string `json:"image_urls"`
		Tags        *[]string `json:"tags"`
		Brand       *string   `json:"brand"`
		Color       *string   `json:"color"`
		Badge       *bool     `json:"badge"`
		IsActive    *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := *existing
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
			return
		}
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.ImageURLs != nil {
		p.ImageURLs = *req.ImageURLs
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.Badge != nil {
		p.Badge = *req.Badge
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	now := time.Now()
	p.UpdatedAt = &now

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `UPDATE products SET name = ?, description = ?, price = ?, stock = ?,
		image_urls = ?, tags = ?, brand = ?, color = ?, badge = ?, is_active = ?, updated_at = ?
		WHERE product_id = ?`
	if err := session.Query(query, p.Name, p.Description, p.Price, p.Stock,
		p.ImageURLs, p.Tags, p.Brand, p.Color, p.Badge, p.IsActive, p.UpdatedAt, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go services.IndexProduct(p)
	cache.InvalidateProductCache(id)

	c.JSON(http.StatusOK, p)
}

// DeleteProduct supprime un produit (admin).
// DELETE /api/product/:id
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	productUUID, err := gocql.ParseUUID(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	go services.RemoveProductFromIndex(id)
	cache.InvalidateProductCache(id)

	log.Printf("🗑️ Produit supprimé: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
