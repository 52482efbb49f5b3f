package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aureliajewelry/storefront-backend/services/cart-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
)

// SetupRoutes registers all cart endpoints. Every route requires the
// user identity headers injected by the gateway.
func SetupRoutes(router *gin.Engine, cc *controllers.CartController) {
	cart := router.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("/", cc.GetCart)
		cart.DELETE("/", cc.ClearCart)
		cart.POST("/items", cc.AddItem)
		cart.PUT("/items", cc.UpdateItem)
		cart.DELETE("/items/:product_id", cc.RemoveItem)
		cart.POST("/checkout", cc.Checkout)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
