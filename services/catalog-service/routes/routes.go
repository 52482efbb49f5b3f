package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
)

// RegisterRoutes wires the catalog endpoints. Reads are public; writes are
// restricted to admins via the gateway role header.
func RegisterRoutes(router *gin.Engine, pc *controllers.ProductController, cc *controllers.CategoryController) {
	products := router.Group("/products")
	{
		products.GET("", pc.GetProducts)
		products.GET("/:id", pc.GetProduct)
		products.GET("/sku/:sku", pc.GetProductBySKU)

		admin := products.Group("", middleware.AdminRequired())
		{
			admin.POST("", pc.CreateProduct)
			admin.PUT("/:id", pc.UpdateProduct)
			admin.DELETE("/:id", pc.DeleteProduct)
			admin.GET("/presign-upload", pc.GetPresignUpload)
		}
	}

	categories := router.Group("/categories")
	{
		categories.GET("", cc.GetCategories)

		admin := categories.Group("", middleware.AdminRequired())
		{
			admin.POST("", cc.CreateCategory)
			admin.PUT("/:id", cc.UpdateCategory)
			admin.DELETE("/:id", cc.DeleteCategory)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
