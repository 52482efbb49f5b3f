package models

import "time"

// PurchasedLine is the slim line shape carried by checkout events.
type PurchasedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutEvent is published when a checkout is accepted. The inventory
// reconciler and the order pipeline both consume it.
type CheckoutEvent struct {
	Event      string          `json:"event"` // "checkout.requested"
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	Items      []PurchasedLine `json:"items"`
	TotalCents int64           `json:"total_cents"`
	Timestamp  time.Time       `json:"timestamp"`
}

const CheckoutRequestedEvent = "checkout.requested"
