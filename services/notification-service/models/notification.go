package models

import "time"

const (
	TypeLowStock = "low-stock"
	TypeOutStock = "out-of-stock"

	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped"
)

// Notification is a stock alert persisted for the merchandising dashboard.
// Dedup is durable: a partial unique index allows at most one undismissed
// row per (product, type), so restarts and concurrent consumers never
// re-alert.
type Notification struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID   string    `json:"product_id" gorm:"uniqueIndex:idx_active_alert,where:dismissed = false"`
	Type        string    `json:"type" gorm:"uniqueIndex:idx_active_alert,where:dismissed = false"`
	Available   int       `json:"available"`
	Threshold   int       `json:"threshold"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	Dismissed   bool      `json:"dismissed"`
	EmailStatus string    `json:"email_status"`
	EmailError  string    `json:"email_error,omitempty"`
	RetryCount  int       `json:"retry_count"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type NotificationFilter struct {
	Type     string
	Unread   *bool
	Page     int
	PageSize int
}

// StockAlertPayload mirrors the event inventory-service publishes.
type StockAlertPayload struct {
	Event     string    `json:"event"`
	ProductID string    `json:"product_id"`
	Status    string    `json:"status"`
	Available int       `json:"available"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}
