package models

import "time"

// CartItem is one purchasable line in a cart. UnitPriceCents and
// StockCeiling are snapshotted when the line is added; the ceiling caps the
// quantity for the life of the line.
type CartItem struct {
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	Variant         string `json:"variant,omitempty"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	Quantity        int    `json:"quantity"`
	StockCeiling    int    `json:"stock_ceiling"`
	DiscountPercent int    `json:"discount_percent"`
	ImageURL        string `json:"image_url,omitempty"`
}

// TotalCents is the discounted line total. The discount is applied after
// multiplying so integer division only truncates once per line.
func (i CartItem) TotalCents() int64 {
	gross := i.UnitPriceCents * int64(i.Quantity)
	return gross * int64(100-i.DiscountPercent) / 100
}

// GrossCents is the undiscounted line total.
func (i CartItem) GrossCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// Cart is the full cart document stored in Redis. Version increases by one
// on every save; a writer holding a stale version is rejected.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindLine returns the index of the (product, variant) line, or -1.
func (c *Cart) FindLine(productID, variant string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Variant == variant {
			return i
		}
	}
	return -1
}

// SubtotalCents is the undiscounted sum over all lines.
func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.GrossCents()
	}
	return sum
}

// TotalCents is the discounted sum over all lines.
func (c *Cart) TotalCents() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.TotalCents()
	}
	return sum
}

// SavingsCents is the total discount across the cart.
func (c *Cart) SavingsCents() int64 {
	return c.SubtotalCents() - c.TotalCents()
}

// Count is the total quantity across all lines.
func (c *Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartView is the API shape: the cart plus its derived totals.
type CartView struct {
	*Cart
	SubtotalCents int64 `json:"subtotal_cents"`
	SavingsCents  int64 `json:"savings_cents"`
	TotalCents    int64 `json:"total_cents"`
	ItemCount     int   `json:"item_count"`
}

func NewCartView(c *Cart) CartView {
	return CartView{
		Cart:          c,
		SubtotalCents: c.SubtotalCents(),
		SavingsCents:  c.SavingsCents(),
		TotalCents:    c.TotalCents(),
		ItemCount:     c.Count(),
	}
}
