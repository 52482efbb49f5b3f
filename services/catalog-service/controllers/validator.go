package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/services"
)

const (
	maxPageSize   = 100
	maxPageNumber = 1000000
)

// CreateProductRequest defines the expected body for creating a product.
type CreateProductRequest struct {
	Name            string            `json:"name" validate:"required"`
	Slug            string            `json:"slug"`
	Description     string            `json:"description" validate:"required"`
	Brand           string            `json:"brand"`
	SKU             string            `json:"sku" validate:"required"`
	PriceCents      int64             `json:"price_cents" validate:"required,gt=0"`
	DiscountPercent int               `json:"discount_percent" validate:"gte=0,lte=100"`
	Variants        []models.Variant  `json:"variants"`
	Extras          []models.Extra    `json:"extras"`
	CustomFields    map[string]string `json:"custom_fields"`
	Images          []string          `json:"images"`
	Categories      []string          `json:"categories"`
	IsFeatured      bool              `json:"is_featured"`
}

// RequestValidator handles input validation for the catalog API.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// ParsePagination validates and parses pagination parameters.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	if page > maxPageNumber {
		page = maxPageNumber
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if err != nil || perPage < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	return page, perPage, nil
}

// ParseListParams validates and parses all list filter parameters.
func (rv *RequestValidator) ParseListParams(c *gin.Context) (services.ListProductsParams, error) {
	params := services.ListProductsParams{}

	page, perPage, err := rv.ParsePagination(c)
	if err != nil {
		return params, err
	}
	params.Page = page
	params.PerPage = perPage

	if s := c.Query("is_featured"); s != "" {
		featured, err := strconv.ParseBool(s)
		if err != nil {
			return params, errors.New("invalid boolean value for 'is_featured'")
		}
		params.IsFeatured = &featured
	}

	if s := c.Query("categoryId"); s != "" {
		for _, raw := range strings.Split(s, ",") {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			id, err := uuid.Parse(trimmed)
			if err != nil {
				return params, errors.New("invalid category ID format")
			}
			params.CategoryIDs = append(params.CategoryIDs, id)
		}
		if len(params.CategoryIDs) == 0 {
			return params, errors.New("invalid category ID format")
		}
	}

	params.Brand = strings.TrimSpace(c.Query("brand"))

	if s := strings.TrimSpace(c.Query("minPriceCents")); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return params, errors.New("invalid minPriceCents value")
		}
		params.MinPriceCents = &v
	}
	if s := strings.TrimSpace(c.Query("maxPriceCents")); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return params, errors.New("invalid maxPriceCents value")
		}
		params.MaxPriceCents = &v
	}
	if params.MinPriceCents != nil && params.MaxPriceCents != nil && *params.MinPriceCents > *params.MaxPriceCents {
		return params, errors.New("minPriceCents must be less than or equal to maxPriceCents")
	}

	sort := strings.ToLower(strings.TrimSpace(c.Query("sort")))
	if sort != "" && !isSupportedSort(sort) {
		return params, errors.New("invalid sort value")
	}
	params.Sort = sort

	return params, nil
}

// ParseCreateProductRequest validates the product creation body.
func (rv *RequestValidator) ParseCreateProductRequest(c *gin.Context) (services.ProductCreateRequest, error) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ProductCreateRequest{}, errors.New("invalid request body")
	}
	if err := rv.validate.Struct(&req); err != nil {
		return services.ProductCreateRequest{}, err
	}

	return services.ProductCreateRequest{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		Brand:           req.Brand,
		SKU:             req.SKU,
		PriceCents:      req.PriceCents,
		DiscountPercent: req.DiscountPercent,
		Variants:        req.Variants,
		Extras:          req.Extras,
		CustomFields:    req.CustomFields,
		Images:          req.Images,
		Categories:      req.Categories,
		IsFeatured:      req.IsFeatured,
	}, nil
}

func isSupportedSort(sort string) bool {
	switch sort {
	case "price_asc", "price_desc", "created_at_asc", "created_at_desc", "name_asc", "name_desc":
		return true
	default:
		return false
	}
}
