package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/controllers"
)

// RegisterRoutes registers all inventory service routes.
func RegisterRoutes(r *gin.Engine, ctrl *controllers.InventoryController) {
	inventory := r.Group("/inventory")
	{
		// Read endpoints used by cart-service and the storefront
		inventory.GET("/:productId", ctrl.GetStock)
		inventory.POST("/check", ctrl.CheckStock)

		// Admin endpoints for stock management
		admin := inventory.Group("")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("", ctrl.SetStock)
			admin.PUT("/:productId", ctrl.UpdateStock)
			admin.POST("/reduce", ctrl.ReduceStock)
		}
	}
}
