package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"orebi_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse le panier et ses totaux à chaque mutation,
// pour synchroniser les onglets ouverts du storefront.
// GET /api/user/cart/ws
func CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	// S'abonner au canal Redis du panier de ce user
	pubsub := database.Redis.Subscribe(ctx, cartKey(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				// canal pub/sub fermé, plus rien à pousser
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			s := loadCartStore(ctx, userID)
			totals := s.Totals()
			response := map[string]interface{}{
				"type":     "cart_updated",
				"items":    s.Items(),
				"subtotal": totals.Subtotal,
				"shipping": totals.Shipping,
				"total":    totals.Total,
				"count":    len(s.Items()),
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
