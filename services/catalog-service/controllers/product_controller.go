package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/services"
)

type ProductController struct {
	service   ProductServiceAPI
	cache     *services.CacheManager
	validator *RequestValidator
	logger    *zap.Logger
}

func NewProductController(service ProductServiceAPI, cache *services.CacheManager, logger *zap.Logger) *ProductController {
	return &ProductController{
		service:   service,
		cache:     cache,
		validator: NewRequestValidator(),
		logger:    logger,
	}
}

// GetProducts handles GET /products with pagination, filtering and a
// versioned list cache.
func (pc *ProductController) GetProducts(c *gin.Context) {
	params, err := pc.validator.ParseListParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cacheKey := params.CacheKey()
	if pc.cache != nil {
		if cached, ok := pc.cache.GetProductList(c.Request.Context(), cacheKey); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultContextTimeout)
	defer cancel()

	products, total, err := pc.service.ListProducts(ctx, params)
	if err != nil {
		pc.logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	response := map[string]interface{}{
		"products":    products,
		"total":       total,
		"page":        params.Page,
		"per_page":    params.PerPage,
		"total_pages": (total + int64(params.PerPage) - 1) / int64(params.PerPage),
	}
	if pc.cache != nil {
		pc.cache.SetProductListAsync(cacheKey, response)
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := pc.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		pc.logger.Error("failed to fetch product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductBySKU handles GET /products/sku/:sku.
func (pc *ProductController) GetProductBySKU(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	product, err := pc.service.GetProductBySKU(c.Request.Context(), sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		pc.logger.Error("failed to fetch product by sku", zap.String("sku", sku), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	req, err := pc.validator.ParseCreateProductRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := pc.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "categories not found") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pc.logger.Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id with a partial field map.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	modified, err := pc.service.UpdateProduct(c.Request.Context(), id, updates)
	if err != nil {
		pc.logger.Error("failed to update product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if modified == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modified": modified})
}

// DeleteProduct handles DELETE /products/:id (soft delete).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	deleted, err := pc.service.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		pc.logger.Error("failed to delete product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// GetPresignUpload handles GET /products/presign-upload?sku=...&filename=...
// and returns a presigned PUT URL for direct S3 image upload.
func (pc *ProductController) GetPresignUpload(c *gin.Context) {
	sku := strings.TrimSpace(c.Query("sku"))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku query parameter is required"})
		return
	}

	filename := c.DefaultQuery("filename", "upload")
	contentType := c.DefaultQuery("content_type", "image/jpeg")
	if !isAllowedImageContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid content type %q", contentType),
		})
		return
	}

	expires, err := strconv.ParseInt(c.DefaultQuery("expires", "900"), 10, 64)
	if err != nil || expires <= 0 {
		expires = 900
	}
	if expires > 3600 {
		expires = 3600
	}

	uploadURL, key, publicURL, err := pc.service.GeneratePresignedUpload(
		c.Request.Context(), sku, filename, contentType, expires)
	if err != nil {
		pc.logger.Error("failed to generate presigned upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate presigned upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": uploadURL,
		"method":     "PUT",
		"key":        key,
		"public_url": publicURL,
		"expires_in": expires,
	})
}

func isAllowedImageContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif":
		return true
	default:
		return false
	}
}
