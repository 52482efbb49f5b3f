package models

import (
	"time"
)

// StockStatus is the derived classification of an inventory record.
type StockStatus string

const (
	StatusInStock    StockStatus = "in-stock"
	StatusLowStock   StockStatus = "low-stock"
	StatusOutOfStock StockStatus = "out-of-stock"
)

// DefaultThreshold is the low-stock threshold applied when a record has none.
const DefaultThreshold = 5

// Classify maps an available count and threshold onto a StockStatus.
// Negative stock cannot be produced by this service's writes, but records
// edited out-of-band classify as out-of-stock rather than erroring.
func Classify(available, threshold int) StockStatus {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	switch {
	case available <= 0:
		return StatusOutOfStock
	case available <= threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Inventory is the stock record for one sellable product or variant.
type Inventory struct {
	ProductID string      `json:"product_id" dynamodbav:"product_id"`
	Available int         `json:"available" dynamodbav:"available"`
	Threshold int         `json:"threshold" dynamodbav:"threshold"`
	Status    StockStatus `json:"status" dynamodbav:"status"`
	UpdatedAt time.Time   `json:"updated_at" dynamodbav:"-"`
}

// SetStockRequest initializes or tops up inventory for a product.
type SetStockRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Available int    `json:"available" binding:"gte=0"`
	Threshold int    `json:"threshold" binding:"gte=0"`
}

// UpdateStockRequest partially adjusts a record.
type UpdateStockRequest struct {
	Available *int `json:"available" binding:"omitempty,gte=0"`
	Threshold *int `json:"threshold" binding:"omitempty,gte=0"`
}

// PurchasedItem is one line of a completed checkout.
type PurchasedItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ReduceRequest asks for stock reconciliation of purchased items.
type ReduceRequest struct {
	OrderID string          `json:"order_id" binding:"required"`
	Items   []PurchasedItem `json:"items" binding:"required,dive"`
}

// ReduceResult reports what one reconciliation step did.
type ReduceResult struct {
	ProductID string      `json:"product_id"`
	Requested int         `json:"requested"`
	Reduced   int         `json:"reduced"`
	Available int         `json:"available"`
	Status    StockStatus `json:"status"`
	Clamped   bool        `json:"clamped"`
}

// StockCheckResult reports availability for one product.
type StockCheckResult struct {
	ProductID    string `json:"product_id"`
	Available    int    `json:"available"`
	Requested    int    `json:"requested"`
	IsSufficient bool   `json:"is_sufficient"`
}

// CheckRequest asks whether the given quantities are available.
type CheckRequest struct {
	Items []PurchasedItem `json:"items" binding:"required,dive"`
}

// StockAlert is published when a record crosses into low or out of stock.
type StockAlert struct {
	Event     string      `json:"event"`
	ProductID string      `json:"product_id"`
	Status    StockStatus `json:"status"`
	Available int         `json:"available"`
	Threshold int         `json:"threshold"`
	Timestamp time.Time   `json:"timestamp"`
}

const StockAlertEvent = "inventory.stock_alert"

// CheckoutEvent mirrors the payload cart-service publishes on checkout.
type CheckoutEvent struct {
	Event     string          `json:"event"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Items     []PurchasedItem `json:"items"`
	Timestamp time.Time       `json:"timestamp"`
}
