package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bazaar-labs/gatehouse/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(
	authService *service.AuthService,
	moderationService *service.ModerationService,
	orderService *service.OrderService,
) *gin.Engine {
	router := gin.Default()

	authHandlers := NewAuthHandlers(authService)
	shopHandlers := NewShopHandlers(moderationService)
	orderHandlers := NewOrderHandlers(orderService)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Admin routes. Nonce, login and logout are reachable without a
	// session; everything else sits behind the cookie middleware.
	admin := router.Group("/admin")
	{
		admin.GET("/nonce", authHandlers.Nonce)
		admin.POST("/login", authHandlers.Login)
		admin.POST("/logout", authHandlers.Logout)
	}

	protected := router.Group("/admin")
	protected.Use(AuthMiddleware(authService))
	{
		protected.GET("/me", authHandlers.Me)
		protected.GET("/shops", shopHandlers.List)
		protected.GET("/shops/:id", shopHandlers.Get)
		protected.POST("/shops/:id/approve", shopHandlers.Approve)
		protected.POST("/shops/:id/suspend", shopHandlers.Suspend)
		protected.POST("/shops/:id/unsuspend", shopHandlers.Unsuspend)
		protected.GET("/shops/:id/audit", shopHandlers.Audit)
	}

	// Marketplace routes used by buyers and sellers.
	router.POST("/shops", shopHandlers.Create)
	router.POST("/orders", orderHandlers.Create)
	router.GET("/orders", orderHandlers.List)
	router.PUT("/orders/status", orderHandlers.UpdateStatus)

	return router
}
