package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/inventory-service/models"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/services"
)

type InventoryController struct {
	service *services.InventoryService
	logger  *zap.Logger
}

func NewInventoryController(service *services.InventoryService, logger *zap.Logger) *InventoryController {
	return &InventoryController{service: service, logger: logger}
}

// GetStock handles GET /inventory/:productId
func (ic *InventoryController) GetStock(c *gin.Context) {
	productID := c.Param("productId")

	inv, err := ic.service.GetStock(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory not found"})
			return
		}
		ic.logger.Error("get stock failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get inventory"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// SetStock handles POST /inventory
func (ic *InventoryController) SetStock(c *gin.Context) {
	var req models.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := ic.service.SetStock(c.Request.Context(), &req)
	if err != nil {
		ic.logger.Error("set stock failed", zap.String("product_id", req.ProductID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set stock"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// UpdateStock handles PUT /inventory/:productId
func (ic *InventoryController) UpdateStock(c *gin.Context) {
	productID := c.Param("productId")

	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Available == nil && req.Threshold == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	inv, err := ic.service.UpdateStock(c.Request.Context(), productID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory not found"})
			return
		}
		ic.logger.Error("update stock failed", zap.String("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update stock"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// CheckStock handles POST /inventory/check
func (ic *InventoryController) CheckStock(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := ic.service.CheckStock(c.Request.Context(), req.Items)
	if err != nil {
		ic.logger.Error("check stock failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ReduceStock handles POST /inventory/reduce, the manual/admin entry point
// into the same reconciliation path the checkout consumer uses.
func (ic *InventoryController) ReduceStock(c *gin.Context) {
	var req models.ReduceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := ic.service.ReduceStock(c.Request.Context(), req.OrderID, req.Items)
	if err != nil {
		ic.logger.Error("reduce stock failed", zap.String("order_id", req.OrderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reduce stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": req.OrderID, "results": results})
}
