package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/controllers"
)

// RegisterRoutes wires the alert dashboard endpoints, all admin-only.
func RegisterRoutes(router *gin.Engine, nc *controllers.NotificationController) {
	notifications := router.Group("/notifications", middleware.AdminRequired())
	{
		notifications.GET("", nc.List)
		notifications.PATCH("/:id/read", nc.MarkRead)
		notifications.POST("/read-all", nc.MarkAllRead)
		notifications.DELETE("/:id", nc.Dismiss)
		notifications.DELETE("", nc.ClearAll)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
