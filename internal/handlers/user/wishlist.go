package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

func wishlistKey(userID string) string {
	return "wishlist:" + userID
}

// loadWishlistStore hydrate un Store avec la wishlist de l'utilisateur.
func loadWishlistStore(ctx context.Context, userID string) *store.Store {
	sf := config.GetStorefront()
	s := store.New(store.Config{ShippingFee: sf.ShippingFee, FreeThreshold: sf.FreeThreshold}, nil)

	data, _ := database.Redis.Get(ctx, wishlistKey(userID)).Result()
	s.Restore(nil, store.DecodeItems(data), nil)
	return s
}

// GetWishlist renvoie la wishlist de l'utilisateur.
// GET /api/user/wishlist
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	s := loadWishlistStore(context.Background(), userID)
	c.JSON(http.StatusOK, gin.H{"items": s.WishlistItems()})
}

// ToggleWishlist ajoute le produit à la wishlist s'il en est absent,
// le retire sinon. Deux appels successifs ramènent la wishlist à son
// état d'origine.
// POST /api/user/wishlist
func ToggleWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	productUUID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	// Vérifier que le produit existe avant de muter l'état local
	product, err := cache.GetProductFromCache(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	ctx := context.Background()
	s := loadWishlistStore(ctx, userID)

	s.ToggleWishlist(models.CartItem{
		ProductID: req.ProductID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
		ImageURL:  imageURL,
	})
	added := s.InWishlist(req.ProductID)

	sf := config.GetStorefront()
	if err := database.Redis.Set(ctx, wishlistKey(userID), store.EncodeItems(s.WishlistItems()), sf.CartTTL).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde wishlist"})
		return
	}

	// Trace durable dans ScyllaDB, best effort
	if session, err := database.GetUsersSession(); err == nil {
		row := models.WishlistItem{
			UserID:    userID,
			ProductID: gocql.UUID(productUUID),
			AddedAt:   time.Now(),
		}
		if added {
			err = session.Query(`INSERT INTO wishlist (user_id, product_id, added_at) VALUES (?, ?, ?)`,
				row.UserID, row.ProductID, row.AddedAt).Exec()
		} else {
			err = session.Query(`DELETE FROM wishlist WHERE user_id = ? AND product_id = ?`,
				row.UserID, row.ProductID).Exec()
		}
		if err != nil {
			log.Printf("⚠️ Erreur écriture wishlist ScyllaDB: %v", err)
		}
	}

	if added {
		log.Printf("⭐ Produit %s ajouté à la wishlist de %s", req.ProductID, userID)
		c.JSON(http.StatusOK, gin.H{
			"message": "Produit ajouté à la wishlist",
			"added":   true,
			"items":   s.WishlistItems(),
		})
		return
	}

	log.Printf("🗑️ Produit %s retiré de la wishlist de %s", req.ProductID, userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Produit retiré de la wishlist",
		"added":   false,
		"items":   s.WishlistItems(),
	})
}
