package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/repository"
)

type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateCategory inherits the full ancestor chain from the parent so
// descendant lookups never need recursion.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryCreateRequest) (*models.Category, error) {
	now := time.Now().UTC()
	category := &models.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}

	if req.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		category.Ancestors = append(append([]uuid.UUID{}, parent.Ancestors...), parent.ID)
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	delete(updates, "_id")
	delete(updates, "id")
	return s.repo.Update(ctx, id, bson.M(updates))
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.repo.Delete(ctx, id)
}
