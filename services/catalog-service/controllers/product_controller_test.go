package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/services"
)

type fakeProductService struct {
	lastParams         services.ListProductsParams
	listProductsCalled int
	listProductsFn     func(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error)
	getProductFn       func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	createProductFn    func(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
}

func (f *fakeProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.getProductFn != nil {
		return f.getProductFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeProductService) ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error) {
	f.listProductsCalled++
	f.lastParams = params
	if f.listProductsFn != nil {
		return f.listProductsFn(ctx, params)
	}
	return []*models.Product{}, 0, nil
}

func (f *fakeProductService) CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error) {
	if f.createProductFn != nil {
		return f.createProductFn(ctx, req)
	}
	return nil, nil
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	return 0, nil
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeProductService) GeneratePresignedUpload(ctx context.Context, sku, filename, contentType string, expiresSeconds int64) (string, string, string, error) {
	return "https://s3.example/upload", "products/" + sku + "/" + filename, "https://cdn.example/" + sku, nil
}

func newTestRouter(fake *fakeProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewProductController(fake, nil, zap.NewNop())
	router := gin.New()
	router.GET("/products", controller.GetProducts)
	router.GET("/products/:id", controller.GetProduct)
	router.POST("/products", controller.CreateProduct)
	router.GET("/presign-upload", controller.GetPresignUpload)
	return router
}

func TestGetProductsWithFilters(t *testing.T) {
	cat1 := uuid.New()
	cat2 := uuid.New()

	fake := &fakeProductService{
		listProductsFn: func(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error) {
			return []*models.Product{
				{ID: uuid.New(), Name: "Solitaire Ring", PriceCents: 125000},
			}, 1, nil
		},
	}
	router := newTestRouter(fake)

	req := httptest.NewRequest(http.MethodGet,
		"/products?page=2&perPage=5&is_featured=true&categoryId="+cat1.String()+","+cat2.String()+
			"&minPriceCents=10000&maxPriceCents=999900&sort=price_asc", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if fake.listProductsCalled != 1 {
		t.Fatalf("expected list products to be called once, got %d", fake.listProductsCalled)
	}

	params := fake.lastParams
	if params.Page != 2 || params.PerPage != 5 {
		t.Fatalf("unexpected pagination params: page=%d perPage=%d", params.Page, params.PerPage)
	}
	if params.IsFeatured == nil || !*params.IsFeatured {
		t.Error("expected is_featured filter to be set")
	}
	if len(params.CategoryIDs) != 2 {
		t.Errorf("expected 2 category ids, got %d", len(params.CategoryIDs))
	}
	if params.MinPriceCents == nil || *params.MinPriceCents != 10000 {
		t.Error("expected min price filter to be parsed")
	}
	if params.Sort != "price_asc" {
		t.Errorf("Sort = %q, want price_asc", params.Sort)
	}
}

func TestGetProducts_RejectsInvalidFilters(t *testing.T) {
	router := newTestRouter(&fakeProductService{})

	for _, query := range []string{
		"?page=0",
		"?is_featured=maybe",
		"?categoryId=not-a-uuid",
		"?minPriceCents=100&maxPriceCents=50",
		"?sort=sideways",
	} {
		req := httptest.NewRequest(http.MethodGet, "/products"+query, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, recorder.Code)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	router := newTestRouter(&fakeProductService{})

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.New().String(), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestCreateProduct_ValidatesBody(t *testing.T) {
	router := newTestRouter(&fakeProductService{})

	body, _ := json.Marshal(gin.H{"name": "Ring"}) // missing sku, description, price
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestCreateProduct_ReturnsCreated(t *testing.T) {
	fake := &fakeProductService{
		createProductFn: func(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error) {
			return &models.Product{ID: uuid.New(), Name: req.Name, SKU: req.SKU, PriceCents: req.PriceCents}, nil
		},
	}
	router := newTestRouter(fake)

	body, _ := json.Marshal(gin.H{
		"name":        "Pearl Necklace",
		"description": "Freshwater pearls on a gold chain",
		"sku":         "NECK-PRL-01",
		"price_cents": 45000,
		"custom_fields": gin.H{
			"material": "14k gold",
			"gemstone": "pearl",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestGetPresignUpload(t *testing.T) {
	router := newTestRouter(&fakeProductService{})

	req := httptest.NewRequest(http.MethodGet, "/presign-upload?sku=RING-01&filename=main.jpg", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["upload_url"] == "" || resp["method"] != "PUT" {
		t.Errorf("unexpected presign response: %v", resp)
	}
}

func TestGetPresignUpload_RequiresSKU(t *testing.T) {
	router := newTestRouter(&fakeProductService{})

	req := httptest.NewRequest(http.MethodGet, "/presign-upload", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}
