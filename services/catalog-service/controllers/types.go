package controllers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/services"
)

const defaultContextTimeout = 30 * time.Second

// ProductServiceAPI defines the interface for product operations.
type ProductServiceAPI interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	GeneratePresignedUpload(ctx context.Context, sku, filename, contentType string, expiresSeconds int64) (string, string, string, error)
}

// CategoryServiceAPI defines the interface for category operations.
type CategoryServiceAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, req services.CategoryCreateRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
}
