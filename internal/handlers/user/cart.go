package user

import (
	"context"
	"net/http"

	"orebi_back_end/internal/cache"
	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

// Le panier de chaque utilisateur vit dans Redis sous `cart:<userID>`,
// en blob JSON []models.CartItem. Chaque requête hydrate un Store,
// applique la mutation puis persiste le résultat — la mutation locale
// n'est appliquée qu'une fois les lectures catalogue réussies
// (discipline confirmer-puis-muter).

func cartKey(userID string) string {
	return "cart:" + userID
}

// loadCartStore hydrate un Store depuis Redis pour l'utilisateur.
func loadCartStore(ctx context.Context, userID string) *store.Store {
	sf := config.GetStorefront()
	s := store.New(
		store.Config{ShippingFee: sf.ShippingFee, FreeThreshold: sf.FreeThreshold},
		store.RedisKV{Client: database.Redis, TTL: sf.SessionTTL},
	)

	data, _ := database.Redis.Get(ctx, cartKey(userID)).Result()
	s.Restore(store.DecodeItems(data), nil, nil)
	return s
}

// saveCart persiste le panier et notifie les clients websocket.
func saveCart(ctx context.Context, userID string, s *store.Store) error {
	sf := config.GetStorefront()
	if err := database.Redis.Set(ctx, cartKey(userID), store.EncodeItems(s.Items()), sf.CartTTL).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, cartKey(userID), "updated")
	return nil
}

// cartResponse renvoie le panier et ses totaux calculés par le Store.
func cartResponse(s *store.Store) gin.H {
	totals := s.Totals()
	return gin.H{
		"items":    s.Items(),
		"subtotal": totals.Subtotal,
		"shipping": totals.Shipping,
		"total":    totals.Total,
	}
}

// GetCart renvoie le panier courant.
// GET /api/user/cart
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	s := loadCartStore(context.Background(), userID)
	c.JSON(http.StatusOK, cartResponse(s))
}

// AddToCart ajoute un produit au panier. Si le produit y figure déjà,
// la quantité demandée s'ajoute à l'existante.
// POST /api/user/cart
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	// Lecture catalogue d'abord : prix et métadonnées d'affichage
	product, err := cache.GetProductFromCache(input.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if !product.IsActive || product.Stock <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit indisponible"})
		return
	}

	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	ctx := context.Background()
	s := loadCartStore(ctx, userID)

	if err := s.AddToCart(models.CartItem{
		ProductID: input.ProductID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  input.Quantity,
		ImageURL:  imageURL,
		Color:     product.Color,
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	if err := saveCart(ctx, userID, s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"items":   s.Items(),
	})
}

// IncreaseQuantity incrémente la quantité d'un article de 1.
// PATCH /api/user/cart/:productId/increase
func IncreaseQuantity(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	ctx := context.Background()
	s := loadCartStore(ctx, userID)
	s.IncreaseQuantity(productID)

	if err := saveCart(ctx, userID, s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(s))
}

// DecreaseQuantity décrémente la quantité d'un article, plancher à 1.
// PATCH /api/user/cart/:productId/decrease
func DecreaseQuantity(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	ctx := context.Background()
	s := loadCartStore(ctx, userID)
	s.DecreaseQuantity(productID)

	if err := saveCart(ctx, userID, s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(s))
}

// RemoveFromCart retire un article du panier.
// DELETE /api/user/cart/:productId
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	ctx := context.Background()
	s := loadCartStore(ctx, userID)
	s.DeleteItem(productID)

	if err := saveCart(ctx, userID, s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"items":   s.Items(),
	})
}

// ClearCart vide complètement le panier.
// DELETE /api/user/cart
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx := context.Background()
	s := loadCartStore(ctx, userID)
	s.ResetCart()

	if err := database.Redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}
	database.Redis.Publish(ctx, cartKey(userID), "cleared")

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}
