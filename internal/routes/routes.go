package routes

import (
	"os"
	"time"

	"orebi_back_end/internal/handlers/admin"
	"orebi_back_end/internal/handlers/banner"
	"orebi_back_end/internal/handlers/payement"
	"orebi_back_end/internal/handlers/product"
	"orebi_back_end/internal/handlers/user"
	"orebi_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontend},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Authentification
	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", middleware.RegisterRateLimit(), user.SignUp)
		auth.POST("/sign-in", middleware.LoginRateLimit(), user.SignIn)
		auth.POST("/admin-login", middleware.LoginRateLimit(), admin.AdminLogin)
		auth.POST("/log-out", middleware.AuthRequired(), user.LogOut)
		auth.POST("/admin-logout", middleware.AuthRequired(), middleware.RequireAdmin, admin.AdminLogout)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
		auth.POST("/change-password", middleware.AuthRequired(), user.ChangePassword)

		// OAuth (Google, Facebook)
		auth.GET("/:provider", user.BeginOAuth)
		auth.GET("/:provider/callback", user.OAuthCallback)
		auth.POST("/google/token", user.GoogleTokenSignIn)
	}

	// Catalogue public
	prod := api.Group("/product")
	{
		prod.GET("", product.GetProducts)
		prod.GET("/search", product.SearchProducts)
		prod.GET("/:id", product.GetProductByID)
	}
	api.GET("/category", product.GetAllCategories)
	api.GET("/banner", banner.GetActiveBanners)

	// Panier et wishlist, réservés aux connectés
	u := api.Group("/user", middleware.AuthRequired())
	{
		u.GET("/cart", user.GetCart)
		u.POST("/cart", user.AddToCart)
		u.PATCH("/cart/:productId/increase", user.IncreaseQuantity)
		u.PATCH("/cart/:productId/decrease", user.DecreaseQuantity)
		u.DELETE("/cart/:productId", user.RemoveFromCart)
		u.DELETE("/cart", user.ClearCart)
		u.GET("/cart/ws", user.CartWebSocket)

		u.GET("/wishlist", user.GetWishlist)
		u.POST("/wishlist", user.ToggleWishlist)

		u.GET("/orders", user.GetMyOrders)
		u.GET("/orders/:id", user.GetOrderByID)
	}

	// Commandes et paiement
	order := api.Group("/order")
	{
		order.POST("/create-order", middleware.AuthRequired(), payement.CreateOrder)
		order.GET("/coupon", middleware.AuthRequired(), payement.ValidateCoupon)
		order.POST("/webhook", payement.StripeWebhook)
	}

	// Administration
	adm := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adm.GET("/stats", admin.GetStats)
		adm.GET("/statics", admin.GetStatics)

		adm.POST("/product", product.CreateProduct)
		adm.PUT("/product/:id", product.UpdateProduct)
		adm.DELETE("/product/:id", product.DeleteProduct)
		adm.POST("/category", product.CreateCategory)

		adm.POST("/banner", banner.CreateBanner)
		adm.PATCH("/banner/:id/status", banner.UpdateBannerStatus)
		adm.DELETE("/banner/:id", banner.DeleteBanner)
	}
}
