package payement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"orebi_back_end/internal/config"
	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/promotioncode"
)

// CreateOrder valide le panier, recalcule les prix depuis le catalogue,
// crée le PaymentIntent Stripe et enregistre la commande en attente.
// POST /api/order/create-order
func CreateOrder(c *gin.Context) {
	var req struct {
		Address    string `json:"address" binding:"required"`
		City       string `json:"city" binding:"required"`
		PostalCode string `json:"postalCode" binding:"required"`
		Country    string `json:"country" binding:"required"`
		Phone      string `json:"phone" binding:"required"`
		CouponCode string `json:"coupon_code"` // Optionnel
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	// ✅ 1. Récupérer le panier depuis Redis
	ctx := context.Background()
	cartData, err := database.Redis.Get(ctx, "cart:"+userID).Result()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide ou introuvable"})
		return
	}

	cartItems := store.DecodeItems(cartData)
	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	// ✅ 2. Vérifier le stock et réaligner nom/prix sur le catalogue
	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	for i, item := range cartItems {
		productUUID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + item.ProductID})
			return
		}

		var stock int
		var name string
		var price float64
		err = productsSession.Query(`SELECT stock, name, price FROM products WHERE product_id = ?`,
			gocql.UUID(productUUID)).Scan(&stock, &name, &price)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable: " + item.ProductID})
			return
		}

		if stock < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Stock insuffisant",
				"product":   name,
				"available": stock,
				"requested": item.Quantity,
			})
			return
		}

		cartItems[i].Name = name
		cartItems[i].Price = price
	}

	// ✅ 3. Sous-total, frais de port et total
	sf := config.GetStorefront()
	s := store.New(store.Config{ShippingFee: sf.ShippingFee, FreeThreshold: sf.FreeThreshold}, nil)
	s.Restore(cartItems, nil, nil)
	totals := s.Totals()

	// ✅ 4. Valider et appliquer le coupon (si fourni)
	var discountAmount float64
	var couponCode string
	if req.CouponCode != "" {
		promo, err := lookupPromotionCode(req.CouponCode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code promo invalide ou expiré"})
			return
		}
		discountAmount = promoDiscount(promo, totals.Subtotal)
		couponCode = req.CouponCode
		log.Printf("✅ Coupon appliqué: %s (%.2f€ de réduction)", couponCode, discountAmount)
	}

	finalPrice := totals.Total - discountAmount
	if finalPrice < 0 {
		finalPrice = 0
	}

	// ✅ 5. Sérialiser le panier pour les metadata Stripe
	cartJSON, err := json.Marshal(cartItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation panier"})
		return
	}

	orderID := gocql.TimeUUID()
	metadata := map[string]string{
		"order_id": orderID.String(),
		"user_id":  userID,
		"email":    email,
		"cart":     string(cartJSON),
	}
	if couponCode != "" {
		metadata["coupon_code"] = couponCode
	}

	// ✅ 6. Créer le PaymentIntent Stripe
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(finalPrice * 100)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return
	}

	// ✅ 7. Enregistrer la commande en attente dans ScyllaDB
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	itemsJSON, _ := json.Marshal(orderItems(cartItems))
	if err := ordersSession.Query(`INSERT INTO orders (order_id, user_id, stripe_id, items_json,
		subtotal, shipping, amount_total, status, address, city, postal_code, country, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, userID, intent.ID, string(itemsJSON),
		totals.Subtotal, totals.Shipping, finalPrice, "pending",
		req.Address, req.City, req.PostalCode, req.Country, req.Phone, time.Now()).Exec(); err != nil {
		log.Println("❌ Erreur insertion commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement commande"})
		return
	}

	log.Printf("💳 Commande %s créée: %s (%.2f€ dont %.2f€ de port) pour %s",
		orderID, intent.ID, finalPrice, totals.Shipping, email)

	c.JSON(http.StatusOK, gin.H{
		"order_id":      orderID.String(),
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
		"subtotal":      totals.Subtotal,
		"shipping":      totals.Shipping,
		"discount":      discountAmount,
		"amount":        finalPrice,
		"free_shipping": totals.IsFree,
		"currency":      "eur",
		"items_count":   len(cartItems),
	})
}

func orderItems(cartItems []models.CartItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return items
}

func lookupPromotionCode(code string) (*stripe.PromotionCode, error) {
	params := &stripe.PromotionCodeListParams{}
	params.Filters.AddFilter("code", "", code)
	params.Filters.AddFilter("active", "", "true")

	iter := promotioncode.List(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("code promo introuvable")
	}
	return iter.PromotionCode(), nil
}

func promoDiscount(promo *stripe.PromotionCode, subtotal float64) float64 {
	if promo.Promotion == nil || promo.Promotion.Coupon == nil {
		return 0
	}
	coupon := promo.Promotion.Coupon
	if coupon.PercentOff > 0 {
		return subtotal * coupon.PercentOff / 100
	}
	return float64(coupon.AmountOff) / 100
}

// ValidateCoupon vérifie si un code promo est valide
// GET /api/order/coupon?code=
func ValidateCoupon(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	promo, err := lookupPromotionCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Code invalide ou expiré"})
		return
	}

	response := gin.H{
		"valid":  true,
		"code":   code,
		"active": promo.Active,
		"id":     promo.ID,
	}
	if promo.ExpiresAt > 0 {
		response["expires_at"] = promo.ExpiresAt
	}
	if promo.MaxRedemptions > 0 {
		response["max_redemptions"] = promo.MaxRedemptions
		response["times_redeemed"] = promo.TimesRedeemed
	}

	c.JSON(http.StatusOK, response)
}
