package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry gates storefront access. The passcode is stored only as a
// bcrypt hash; the plaintext exists once, inside the signup email.
type WaitlistEntry struct {
	ID            uuid.UUID  `json:"id" bson:"_id"`
	Email         string     `json:"email" bson:"email"`
	PasscodeHash  string     `json:"-" bson:"passcode_hash"`
	LoginAttempts int        `json:"login_attempts" bson:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty" bson:"locked_until,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

type NewsletterSignup struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// InvoiceLine is one purchased row on the invoice email.
type InvoiceLine struct {
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
	TotalCents int64  `json:"total_cents"`
}

// Invoice is the payload of the send-email endpoint.
type Invoice struct {
	OrderID    string        `json:"order_id"`
	Items      []InvoiceLine `json:"items"`
	TotalCents int64         `json:"total_cents"`
	IssuedAt   time.Time     `json:"issued_at"`
}

// SenderInfo identifies the shop on outbound invoice emails.
type SenderInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
