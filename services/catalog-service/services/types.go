package services

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
)

// ListProductsParams defines the parameters for listing products.
type ListProductsParams struct {
	Page          int
	PerPage       int
	IsFeatured    *bool // pointer distinguishes false from not set
	CategoryIDs   []uuid.UUID
	Brand         string
	MinPriceCents *int64
	MaxPriceCents *int64
	Sort          string
}

// CacheKey builds a deterministic key for list caching from the parameters.
func (p ListProductsParams) CacheKey() string {
	key := ""
	for _, id := range p.CategoryIDs {
		key += id.String() + ","
	}
	featured := ""
	if p.IsFeatured != nil {
		if *p.IsFeatured {
			featured = "1"
		} else {
			featured = "0"
		}
	}
	return fmt.Sprintf("p:%d:l:%d:f:%s:c:%s:b:%s:s:%s:min:%s:max:%s",
		p.Page, p.PerPage, featured, key, p.Brand, p.Sort,
		formatCentsForCache(p.MinPriceCents), formatCentsForCache(p.MaxPriceCents))
}

func formatCentsForCache(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}

type ProductCreateRequest struct {
	Name            string
	Slug            string
	Description     string
	Brand           string
	SKU             string
	PriceCents      int64
	DiscountPercent int
	Variants        []models.Variant
	Extras          []models.Extra
	CustomFields    map[string]string
	Images          []string
	Categories      []string
	IsFeatured      bool
}

type CategoryCreateRequest struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
}
