package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meowkart/cat-ecommerce-golang/internal/config"
	"github.com/meowkart/cat-ecommerce-golang/internal/handlers"
	"github.com/meowkart/cat-ecommerce-golang/internal/middleware"
)

// CORSMiddleware reflects the request origin back when it is one of the
// configured origins, and answers preflight OPTIONS requests with 204.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SetupRouter wires every endpoint. Public routes come first; the
// protected groups stack AuthMiddleware and, where needed, AdminMiddleware.
func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Logger))
	router.Use(CORSMiddleware(cfg.CORSOrigins))

	authRequired := middleware.AuthMiddleware(cfg)
	adminRequired := middleware.AdminMiddleware(h.DB)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Cat eCommerce API is running"})
		})

		// --- Auth ---
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/profile", authRequired, h.GetProfile)
			auth.PUT("/profile", authRequired, h.UpdateProfile)
			auth.POST("/change-password", authRequired, h.ChangePassword)
		}

		// --- Catalog ---
		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/categories", h.GetCategories)
			products.GET("/:id", h.GetProduct)
			products.POST("", authRequired, adminRequired, h.CreateProduct)
			products.PUT("/:id", authRequired, adminRequired, h.UpdateProduct)
			products.DELETE("/:id", authRequired, adminRequired, h.DeleteProduct)
		}

		// --- Cart (login required) ---
		cart := api.Group("/cart", authRequired)
		{
			cart.GET("", h.GetCart)
			cart.POST("", h.AddToCart)
			cart.PUT("/:item_id", h.UpdateCartItem)
			cart.DELETE("/:item_id", h.RemoveCartItem)
			cart.DELETE("", h.ClearCart)
		}

		// --- Orders (login required; status updates are admin-only) ---
		orders := api.Group("/orders", authRequired)
		{
			orders.GET("", h.GetOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("", h.CreateOrder)
			orders.PUT("/:id", adminRequired, h.UpdateOrder)
			orders.POST("/:id/confirm-payment", h.ConfirmPayment)
		}

		// --- Reviews ---
		reviews := api.Group("/reviews")
		{
			reviews.GET("/product/:product_id", h.GetProductReviews)
			reviews.POST("/product/:product_id", authRequired, h.SubmitReview)
			reviews.PUT("/:id", authRequired, h.UpdateReview)
			reviews.DELETE("/:id", authRequired, h.DeleteReview)
			reviews.POST("/:id/helpful", h.MarkHelpful)
		}

		// --- Users ---
		users := api.Group("/users")
		{
			users.GET("/:id", h.GetUser)
			users.GET("/admin/list", authRequired, adminRequired, h.ListUsers)
			users.PUT("/admin/:id/toggle-admin", authRequired, adminRequired, h.ToggleAdmin)
			users.PUT("/admin/:id/toggle-active", authRequired, adminRequired, h.ToggleActive)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
