package models

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a purchasable variation of a product, such as a ring size or
// chain length. PriceDeltaCents is added to the base price.
type Variant struct {
	Label           string `json:"label" bson:"label"`
	SKUSuffix       string `json:"sku_suffix,omitempty" bson:"sku_suffix,omitempty"`
	PriceDeltaCents int64  `json:"price_delta_cents" bson:"price_delta_cents"`
}

// Extra is an optional add-on such as gift wrapping or engraving.
type Extra struct {
	Name       string `json:"name" bson:"name"`
	PriceCents int64  `json:"price_cents" bson:"price_cents"`
}

type Product struct {
	ID              uuid.UUID         `json:"id" bson:"_id"`
	Name            string            `json:"name" bson:"name"`
	Slug            string            `json:"slug" bson:"slug"`
	Description     string            `json:"description" bson:"description"`
	Brand           string            `json:"brand" bson:"brand"`
	SKU             string            `json:"sku" bson:"sku"`
	PriceCents      int64             `json:"price_cents" bson:"price_cents"`
	DiscountPercent int               `json:"discount_percent" bson:"discount_percent"`
	Variants        []Variant         `json:"variants,omitempty" bson:"variants,omitempty"`
	Extras          []Extra           `json:"extras,omitempty" bson:"extras,omitempty"`
	CustomFields    map[string]string `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"`
	Images          []string          `json:"images" bson:"images"`
	CategoryIDs     []uuid.UUID       `json:"category_ids" bson:"category_ids"`
	IsFeatured      bool              `json:"is_featured" bson:"is_featured"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at"`
	DeletedAt       *time.Time        `json:"-" bson:"deleted_at,omitempty"`
}

// EffectivePriceCents is the discounted base price.
func (p *Product) EffectivePriceCents() int64 {
	return p.PriceCents * int64(100-p.DiscountPercent) / 100
}

// VariantPriceCents returns the discounted price for the named variant, or
// the base price when the label is unknown.
func (p *Product) VariantPriceCents(label string) int64 {
	for _, v := range p.Variants {
		if v.Label == label {
			return (p.PriceCents + v.PriceDeltaCents) * int64(100-p.DiscountPercent) / 100
		}
	}
	return p.EffectivePriceCents()
}
