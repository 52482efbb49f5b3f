package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/repository"
)

type ProductService struct {
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	cache        *CacheManager
	s3Client     *s3.Client
	imageBucket  string
	publicCDN    string
	logger       *zap.Logger
}

func NewProductService(
	pr *repository.ProductRepository,
	cr *repository.CategoryRepository,
	cache *CacheManager,
	s3Client *s3.Client,
	imageBucket, publicCDN string,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  pr,
		categoryRepo: cr,
		cache:        cache,
		s3Client:     s3Client,
		imageBucket:  imageBucket,
		publicCDN:    publicCDN,
		logger:       logger,
	}
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		if product, ok := s.cache.GetProduct(ctx, id.String()); ok {
			return product, nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetProductAsync(id.String(), product)
	}
	return product, nil
}

func (s *ProductService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return s.productRepo.FindBySKU(ctx, sku)
}

func (s *ProductService) ListProducts(ctx context.Context, params ListProductsParams) ([]*models.Product, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if params.IsFeatured != nil {
		filter["is_featured"] = *params.IsFeatured
	}
	if len(params.CategoryIDs) > 0 {
		filter["category_ids"] = bson.M{"$in": params.CategoryIDs}
	}
	if params.Brand != "" {
		filter["brand"] = params.Brand
	}
	if params.MinPriceCents != nil || params.MaxPriceCents != nil {
		priceFilter := bson.M{}
		if params.MinPriceCents != nil {
			priceFilter["$gte"] = *params.MinPriceCents
		}
		if params.MaxPriceCents != nil {
			priceFilter["$lte"] = *params.MaxPriceCents
		}
		filter["price_cents"] = priceFilter
	}

	findOptions := options.Find().
		SetLimit(int64(params.PerPage)).
		SetSkip(int64((params.Page - 1) * params.PerPage)).
		SetSort(sortSpec(params.Sort))

	products, err := s.productRepo.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func sortSpec(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price_cents", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price_cents", Value: -1}}
	case "name_asc":
		return bson.D{{Key: "name", Value: 1}}
	case "name_desc":
		return bson.D{{Key: "name", Value: -1}}
	case "created_at_asc":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (*models.Product, error) {
	categoryIDs, err := s.resolveCategories(ctx, req.Categories)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:              uuid.New(),
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
		CategoryIDs:     categoryIDs,
		IsFeatured:      req.IsFeatured,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if product.Slug == "" {
		product.Slug = slugify(product.Name)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, product.ID.String())
	}
	return product, nil
}

// resolveCategories maps category names to ids, including every ancestor so
// a product filed under "Engagement Rings" also matches "Rings".
func (s *ProductService) resolveCategories(ctx context.Context, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	categories, err := s.categoryRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	if len(categories) != len(names) {
		return nil, fmt.Errorf("one or more categories not found")
	}

	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, cat := range categories {
		if !seen[cat.ID] {
			ids = append(ids, cat.ID)
			seen[cat.ID] = true
		}
		for _, ancestor := range cat.Ancestors {
			if !seen[ancestor] {
				ids = append(ids, ancestor)
				seen[ancestor] = true
			}
		}
	}
	return ids, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if len(updates) == 0 {
		return 0, fmt.Errorf("no update fields provided")
	}
	delete(updates, "_id")
	delete(updates, "id")

	modified, err := s.productRepo.Update(ctx, id, bson.M(updates))
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, id.String())
	}
	return modified, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, id.String())
	}
	return deleted, nil
}

// GeneratePresignedUpload returns a presigned PUT URL for a product image
// keyed by SKU, plus the object key and eventual public URL.
func (s *ProductService) GeneratePresignedUpload(ctx context.Context, sku, filename, contentType string, expiresSeconds int64) (string, string, string, error) {
	if s.s3Client == nil {
		return "", "", "", fmt.Errorf("image uploads not configured")
	}

	key := fmt.Sprintf("products/%s/%s", sku, filename)
	uploadURL, _, err := awspkg.PresignPutURL(ctx, s.s3Client, s.imageBucket, key, contentType,
		time.Duration(expiresSeconds)*time.Second)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.publicCDN, "/"), key)
	return uploadURL, key, publicURL, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
