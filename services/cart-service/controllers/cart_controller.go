package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/clients"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/config"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/database"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/kafka"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/models"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
)

// CartStore is the persistence surface the controller needs; satisfied by
// database.CartRepository and by fakes in tests.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
	DeleteIdempotency(ctx context.Context, key string) error
}

// StockReader reads live stock levels for ceiling snapshots.
type StockReader interface {
	GetStock(ctx context.Context, productID string) (*clients.StockInfo, error)
}

type CartController struct {
	store     CartStore
	stock     StockReader
	producer  kafka.CheckoutProducer
	publisher awspkg.SNSPublisher
	cfg       config.Config
	logger    *zap.Logger
}

func NewCartController(
	store CartStore,
	stock StockReader,
	producer kafka.CheckoutProducer,
	publisher awspkg.SNSPublisher,
	cfg config.Config,
	logger *zap.Logger,
) *CartController {
	return &CartController{
		store:     store,
		stock:     stock,
		producer:  producer,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

func (cc *CartController) userID(c *gin.Context) string {
	return c.GetString(middleware.UserContextKey)
}

func (cc *CartController) loadOrNewCart(c *gin.Context) (*models.Cart, bool) {
	userID := cc.userID(c)
	cart, err := cc.store.GetCart(c.Request.Context(), userID)
	if err != nil {
		cc.logger.Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return nil, false
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, true
}

func (cc *CartController) saveCart(c *gin.Context, cart *models.Cart) bool {
	if err := cc.store.SaveCart(c.Request.Context(), cart); err != nil {
		if errors.Is(err, database.ErrVersionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "cart was modified by another writer, reload and retry"})
			return false
		}
		cc.logger.Error("failed to save cart", zap.String("user_id", cart.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return false
	}
	return true
}

// GetCart handles GET /cart/
func (cc *CartController) GetCart(c *gin.Context) {
	cart, ok := cc.loadOrNewCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(cart))
}

type addItemRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	Name            string `json:"name"`
	Variant         string `json:"variant"`
	Quantity        int    `json:"quantity" binding:"omitempty,min=1"`
	UnitPriceCents  int64  `json:"unit_price_cents" binding:"gte=0"`
	DiscountPercent int    `json:"discount_percent" binding:"gte=0,lte=100"`
	ImageURL        string `json:"image_url"`
}

// AddItem handles POST /cart/items. An existing (product, variant) line is
// merged; the stock ceiling is re-snapshotted from inventory on every add.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ceiling := 0
	info, err := cc.stock.GetStock(c.Request.Context(), req.ProductID)
	if err != nil && !errors.Is(err, clients.ErrStockNotFound) {
		cc.logger.Error("stock lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "inventory unavailable"})
		return
	}
	if info != nil {
		ceiling = info.Available
	}

	cart, ok := cc.loadOrNewCart(c)
	if !ok {
		return
	}

	idx := cart.FindLine(req.ProductID, req.Variant)
	newQty := req.Quantity
	if idx >= 0 {
		newQty += cart.Items[idx].Quantity
	}
	if newQty > ceiling {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient stock",
			"available": ceiling,
			"requested": newQty,
		})
		return
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = newQty
		cart.Items[idx].StockCeiling = ceiling
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:       req.ProductID,
			Name:            req.Name,
			Variant:         req.Variant,
			UnitPriceCents:  req.UnitPriceCents,
			Quantity:        req.Quantity,
			StockCeiling:    ceiling,
			DiscountPercent: req.DiscountPercent,
			ImageURL:        req.ImageURL,
		})
	}

	if !cc.saveCart(c, cart) {
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(cart))
}

type updateItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity"`
}

// UpdateItem handles PUT /cart/items. Quantity is clamped to the line's
// stock ceiling; zero or negative removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, ok := cc.loadOrNewCart(c)
	if !ok {
		return
	}

	idx := cart.FindLine(req.ProductID, req.Variant)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in cart"})
		return
	}

	if req.Quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		qty := req.Quantity
		if qty > cart.Items[idx].StockCeiling {
			qty = cart.Items[idx].StockCeiling
		}
		cart.Items[idx].Quantity = qty
	}

	if !cc.saveCart(c, cart) {
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(cart))
}

// RemoveItem handles DELETE /cart/items/:product_id?variant=
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID := c.Param("product_id")
	variant := c.Query("variant")

	cart, ok := cc.loadOrNewCart(c)
	if !ok {
		return
	}

	idx := cart.FindLine(productID, variant)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in cart"})
		return
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if !cc.saveCart(c, cart) {
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(cart))
}

// ClearCart handles DELETE /cart/
func (cc *CartController) ClearCart(c *gin.Context) {
	userID := cc.userID(c)
	if err := cc.store.DeleteCart(c.Request.Context(), userID); err != nil {
		cc.logger.Error("failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// Checkout handles POST /cart/checkout. The Idempotency-Key header is
// required; a replayed key returns the original order id without
// republishing events.
func (cc *CartController) Checkout(c *gin.Context) {
	userID := cc.userID(c)
	ctx := c.Request.Context()

	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	if orderID, err := cc.store.GetIdempotency(ctx, idemKey); err != nil {
		cc.logger.Error("idempotency lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	} else if orderID != "" {
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "replayed": true})
		return
	}

	cart, err := cc.store.GetCart(ctx, userID)
	if err != nil {
		cc.logger.Error("failed to load cart", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		return
	}

	orderID := uuid.New().String()
	event := models.CheckoutEvent{
		Event:      models.CheckoutRequestedEvent,
		OrderID:    orderID,
		UserID:     userID,
		TotalCents: cart.TotalCents(),
		Timestamp:  time.Now().UTC(),
	}
	for _, item := range cart.Items {
		event.Items = append(event.Items, models.PurchasedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	// Reserve the key before publishing anything. If the record cannot be
	// written the checkout fails cleanly and a retry replays from scratch,
	// so the same key can never reconcile stock twice.
	if err := cc.store.SetIdempotency(ctx, idemKey, orderID, cc.cfg.IdemTTL); err != nil {
		cc.logger.Error("failed to reserve idempotency key",
			zap.String("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}

	if err := cc.producer.SendCheckoutEvent(ctx, event); err != nil {
		cc.logger.Error("failed to publish checkout to kafka",
			zap.String("order_id", orderID), zap.Error(err))
		cc.releaseIdempotency(ctx, idemKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish checkout event"})
		return
	}

	if cc.publisher != nil && cc.cfg.OrderTopicArn != "" {
		payload, _ := json.Marshal(event)
		if err := cc.publisher.Publish(ctx, cc.cfg.OrderTopicArn, payload); err != nil {
			cc.logger.Error("failed to publish order event to sns",
				zap.String("order_id", orderID), zap.Error(err))
			cc.releaseIdempotency(ctx, idemKey)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish checkout event"})
			return
		}
	}

	if err := cc.store.DeleteCart(ctx, userID); err != nil {
		cc.logger.Error("failed to clear cart after checkout",
			zap.String("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "total_cents": event.TotalCents})
}

func (cc *CartController) releaseIdempotency(ctx context.Context, key string) {
	if err := cc.store.DeleteIdempotency(ctx, key); err != nil {
		cc.logger.Error("failed to release idempotency key", zap.Error(err))
	}
}
