package payement

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"orebi_back_end/internal/database"
	"orebi_back_end/internal/models"
	"orebi_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// StripeWebhook reçoit les événements Stripe.
// POST /api/order/webhook
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

func handleStripeEvent(event stripe.Event) {
	if event.Type != "payment_intent.succeeded" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}

	orderID := pi.Metadata["order_id"]
	userID := pi.Metadata["user_id"]
	userEmail := pi.Metadata["email"]
	if orderID == "" || userID == "" || userEmail == "" {
		log.Println("⚠️ Métadonnées incomplètes")
		return
	}
	log.Printf("👤 User %s | 📧 %s | commande %s", userID, userEmail, orderID)

	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		log.Println("❌ order_id invalide:", err)
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		log.Println("❌ Erreur connexion base de données:", err)
		return
	}

	// Idempotence : on ne traite pas deux fois la même commande
	var status string
	if err := ordersSession.Query(`SELECT status FROM orders WHERE order_id = ?`, orderUUID).Scan(&status); err != nil {
		log.Println("❌ Commande introuvable:", err)
		return
	}
	if status == "paid" {
		log.Println("🔁 Commande déjà payée, on ignore.")
		return
	}

	if err := ordersSession.Query(`UPDATE orders SET status = ? WHERE order_id = ?`, "paid", orderUUID).Exec(); err != nil {
		log.Println("❌ Erreur mise à jour commande:", err)
		return
	}
	log.Printf("✅ Commande %s marquée payée", orderID)

	// Le paiement vide le panier, comme une déconnexion viderait la session
	ctx := context.Background()
	cartKey := "cart:" + userID
	if err := database.Redis.Del(ctx, cartKey).Err(); err == nil {
		database.Redis.Publish(ctx, cartKey, "cleared")
		log.Printf("🧹 Panier supprimé pour %s", userID)
	}

	// Décrémenter le stock des produits vendus
	order := loadOrder(ordersSession, orderUUID)
	if order == nil {
		return
	}
	decrementStock(order.Items)

	// Facture PDF + e-mail de confirmation, hors du chemin du webhook
	go sendOrderConfirmation(*order, userEmail)
}

func loadOrder(session *gocql.Session, orderUUID gocql.UUID) *models.Order {
	var order models.Order
	var itemsJSON string
	err := session.Query(`SELECT order_id, user_id, stripe_id, items_json, subtotal, shipping,
		amount_total, status, address, city, postal_code, country, phone, created_at
		FROM orders WHERE order_id = ?`, orderUUID).Scan(
		&order.ID, &order.UserID, &order.StripeID, &itemsJSON, &order.Subtotal, &order.Shipping,
		&order.AmountTotal, &order.Status, &order.Address, &order.City, &order.PostalCode,
		&order.Country, &order.Phone, &order.CreatedAt)
	if err != nil {
		log.Println("❌ Erreur relecture commande:", err)
		return nil
	}
	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		log.Println("❌ Items de commande illisibles:", err)
		return nil
	}
	order.Status = "paid"
	return &order
}

func decrementStock(items []models.OrderItem) {
	session, err := database.GetProductsSession()
	if err != nil {
		log.Println("⚠️ Stock non décrémenté:", err)
		return
	}
	for _, item := range items {
		productUUID, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			continue
		}
		var stock int
		if err := session.Query(`SELECT stock FROM products WHERE product_id = ?`, productUUID).Scan(&stock); err != nil {
			continue
		}
		newStock := stock - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		if err := session.Query(`UPDATE products SET stock = ? WHERE product_id = ?`, newStock, productUUID).Exec(); err != nil {
			log.Printf("⚠️ Stock non mis à jour pour %s: %v", item.ProductID, err)
		}
		database.Redis.Del(context.Background(), "product:"+item.ProductID)
	}
	database.Redis.Del(context.Background(), "products:all")
}

func sendOrderConfirmation(order models.Order, userEmail string) {
	qrBase64, err := utils.GeneratePaymentQR(
		os.Getenv("COMPANY_IBAN"),
		os.Getenv("COMPANY_BIC"),
		os.Getenv("COMPANY_NAME"),
		"Commande "+order.ID.String(),
		order.AmountTotal,
	)
	if err != nil {
		log.Println("⚠️ QR de paiement non généré:", err)
	}

	invoiceHTML := utils.GenerateInvoiceHTML(order, userEmail, qrBase64)
	pdf, err := utils.RenderInvoicePDF(invoiceHTML)
	if err != nil {
		log.Println("❌ Erreur génération PDF:", err)
		pdf = nil
	}

	html := utils.GenerateOrderConfirmationHTML(order)
	if err := utils.SendConfirmationEmail(userEmail, "Confirmation de votre commande Orebi", html, pdf); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation:", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", userEmail)
	}
}
