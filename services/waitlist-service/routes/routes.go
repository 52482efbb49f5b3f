package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/controllers"
)

// RegisterRoutes wires the public email endpoints. All endpoints are
// POST-only; other methods on the same paths get a 405.
func RegisterRoutes(router *gin.Engine, wc *controllers.WaitlistController) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": true, "message": "method not allowed"})
	})

	api := router.Group("/api")
	{
		api.POST("/waitlist", wc.Join)
		api.POST("/login", wc.Login)
		api.POST("/send-email", wc.SendEmail)
		api.POST("/newsletter", wc.Newsletter)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
