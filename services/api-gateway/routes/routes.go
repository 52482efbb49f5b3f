package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/api-gateway/middlewares"
	"github.com/aureliajewelry/storefront-backend/services/api-gateway/utils"
)

// ServiceTargets holds the base URLs of the downstream services.
type ServiceTargets struct {
	Catalog      string
	Inventory    string
	Notification string
	Cart         string
	Waitlist     string
}

func RegisterAllRoutes(r *gin.Engine, targets ServiceTargets, logger *zap.Logger) {
	forwardTo := func(targetBase string) gin.HandlerFunc {
		return func(c *gin.Context) {
			utils.ForwardRequest(c, logger, utils.ForwardOptions{
				TargetBase: targetBase,
			})
		}
	}

	// ===== PUBLIC ROUTES =====
	public := r.Group("/")

	// Catalog browsing stays open to everyone.
	products := forwardTo(targets.Catalog + "/products")
	public.GET("/products", products)
	public.GET("/products/*any", products)

	categories := forwardTo(targets.Catalog + "/categories")
	public.GET("/categories", categories)
	public.GET("/categories/*any", categories)

	// Public stock lookups so product pages can show availability.
	inventory := forwardTo(targets.Inventory + "/inventory")
	public.GET("/inventory/*any", inventory)

	// Waitlist, login and transactional email endpoints are public by
	// design; the waitlist service does its own passcode gating.
	waitlist := forwardTo(targets.Waitlist + "/api")
	public.POST("/api/*any", waitlist)

	// ===== PROTECTED ROUTES (JWT required) =====
	protected := r.Group("/")
	protected.Use(middlewares.JWTMiddleware())

	cart := forwardTo(targets.Cart + "/cart")
	protected.GET("/cart", cart)
	protected.GET("/cart/*any", cart)
	protected.POST("/cart/*any", cart)
	protected.PUT("/cart/*any", cart)
	protected.DELETE("/cart", cart)
	protected.DELETE("/cart/*any", cart)

	// ===== ADMIN ROUTES (JWT + admin role) =====
	admin := protected.Group("/")
	admin.Use(middlewares.AdminRoleMiddleware())

	admin.POST("/products", products)
	admin.POST("/products/*any", products)
	admin.PUT("/products/*any", products)
	admin.DELETE("/products/*any", products)

	admin.POST("/categories", categories)
	admin.POST("/categories/*any", categories)
	admin.PUT("/categories/*any", categories)
	admin.DELETE("/categories/*any", categories)

	admin.POST("/inventory", inventory)
	admin.POST("/inventory/*any", inventory)
	admin.PUT("/inventory/*any", inventory)

	notifications := forwardTo(targets.Notification + "/notifications")
	admin.GET("/notifications", notifications)
	admin.GET("/notifications/*any", notifications)
	admin.POST("/notifications/*any", notifications)
	admin.PATCH("/notifications/*any", notifications)
	admin.DELETE("/notifications", notifications)
	admin.DELETE("/notifications/*any", notifications)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
