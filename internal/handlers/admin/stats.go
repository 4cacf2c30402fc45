package admin

import (
	"log"
	"net/http"
	"time"

	"orebi_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

// GetStats retourne les statistiques du dashboard admin
// GET /api/admin/stats
func GetStats(c *gin.Context) {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var totalOrders int
	var totalRevenue float64
	var totalShipping float64
	statusCount := make(map[string]int)

	iter := ordersSession.Query(`SELECT status, amount_total, shipping FROM orders`).Iter()
	var status string
	var amount, shipping float64

	for iter.Scan(&status, &amount, &shipping) {
		totalOrders++
		statusCount[status]++
		if status == "paid" {
			totalRevenue += amount
			totalShipping += shipping
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture stats commandes: %v", err)
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var totalProducts, lowStockProducts, outOfStockProducts int
	prodIter := productsSession.Query(`SELECT stock FROM products`).Iter()
	var stock int
	for prodIter.Scan(&stock) {
		totalProducts++
		if stock == 0 {
			outOfStockProducts++
		} else if stock < 10 {
			lowStockProducts++
		}
	}
	if err := prodIter.Close(); err != nil {
		log.Printf("❌ Erreur lecture stats produits: %v", err)
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var totalUsers int
	var userID string
	usersIter := usersSession.Query(`SELECT user_id FROM users`).Iter()
	for usersIter.Scan(&userID) {
		totalUsers++
	}
	if err := usersIter.Close(); err != nil {
		log.Printf("❌ Erreur lecture stats utilisateurs: %v", err)
	}

	var averageOrderValue float64
	if paid := statusCount["paid"]; paid > 0 {
		averageOrderValue = totalRevenue / float64(paid)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":               totalOrders,
			"total_revenue":       totalRevenue,
			"shipping_collected":  totalShipping,
			"average_order_value": averageOrderValue,
			"by_status":           statusCount,
		},
		"products": gin.H{
			"total":        totalProducts,
			"low_stock":    lowStockProducts,
			"out_of_stock": outOfStockProducts,
		},
		"users": gin.H{
			"total": totalUsers,
		},
		"generated_at": time.Now(),
	})
}

// GetStatics retourne les séries mensuelles pour les graphiques du dashboard
// (revenu et nombre de commandes payées sur les 12 derniers mois).
// GET /api/admin/statics
func GetStatics(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	type monthlyPoint struct {
		Month   string  `json:"month"`
		Revenue float64 `json:"revenue"`
		Orders  int     `json:"orders"`
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	byMonth := make(map[string]*monthlyPoint)
	months := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		byMonth[key] = &monthlyPoint{Month: key}
		months = append(months, key)
	}

	iter := session.Query(`SELECT status, amount_total, created_at FROM orders`).Iter()
	var status string
	var amount float64
	var createdAt time.Time

	for iter.Scan(&status, &amount, &createdAt) {
		if status != "paid" || createdAt.Before(start) {
			continue
		}
		if point, ok := byMonth[createdAt.Format("2006-01")]; ok {
			point.Revenue += amount
			point.Orders++
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture séries mensuelles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	series := make([]monthlyPoint, 0, 12)
	for _, key := range months {
		series = append(series, *byMonth[key])
	}

	c.JSON(http.StatusOK, gin.H{"monthly": series})
}
