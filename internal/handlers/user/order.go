package user

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

func scanOrders(iter *gocql.Iter) []models.Order {
	var orders []models.Order
	var (
		id          gocql.UUID
		userID      string
		stripeID    string
		itemsJSON   string
		subtotal    float64
		shipping    float64
		amountTotal float64
		status      string
		address     string
		city        string
		postalCode  string
		country     string
		phone       string
		createdAt   time.Time
	)
	for iter.Scan(&id, &userID, &stripeID, &itemsJSON, &subtotal, &shipping, &amountTotal,
		&status, &address, &city, &postalCode, &country, &phone, &createdAt) {
		order := models.Order{
			ID:          id,
			UserID:      userID,
			StripeID:    stripeID,
			Subtotal:    subtotal,
			Shipping:    shipping,
			AmountTotal: amountTotal,
			Status:      status,
			Address:     address,
			City:        city,
			PostalCode:  postalCode,
			Country:     country,
			Phone:       phone,
			CreatedAt:   createdAt,
		}
		if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
			log.Printf("⚠️ Items de commande %s illisibles: %v", id, err)
		}
		orders = append(orders, order)
	}
	return orders
}

// ✅ Récupère toutes les commandes de l'utilisateur connecté
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	iter := session.Query(`SELECT order_id, user_id, stripe_id, items_json, subtotal, shipping,
		amount_total, status, address, city, postal_code, country, phone, created_at
		FROM orders WHERE user_id = ? ALLOW FILTERING`, userID).Iter()

	orders := scanOrders(iter)
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	// Les plus récentes en premier
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	log.Printf("✅ %d commandes trouvées pour user %s", len(orders), userID)
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ✅ Récupère une commande spécifique par ID
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	iter := session.Query(`SELECT order_id, user_id, stripe_id, items_json, subtotal, shipping,
		amount_total, status, address, city, postal_code, country, phone, created_at
		FROM orders WHERE order_id = ?`, orderUUID).Iter()

	orders := scanOrders(iter)
	if err := iter.Close(); err != nil || len(orders) == 0 {
		log.Println("❌ Commande introuvable:", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	// Sécurité : on vérifie que la commande appartient bien à l'utilisateur
	order := orders[0]
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, order)
}
