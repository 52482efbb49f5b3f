package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/cart-service/clients"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/config"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/database"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/models"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/routes"
)

type fakeStore struct {
	mu         sync.Mutex
	carts      map[string]*models.Cart
	idem       map[string]string
	saveErr    error
	idemSetErr error
	conflict   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[string]*models.Cart{}, idem: map[string]string{}}
}

func (f *fakeStore) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (f *fakeStore) SaveCart(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.conflict {
		return database.ErrVersionConflict
	}
	cart.Version++
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeStore) DeleteCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

func (f *fakeStore) GetIdempotency(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idem[key], nil
}

func (f *fakeStore) SetIdempotency(_ context.Context, key, orderID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idemSetErr != nil {
		return f.idemSetErr
	}
	f.idem[key] = orderID
	return nil
}

func (f *fakeStore) DeleteIdempotency(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.idem, key)
	return nil
}

type fakeStock struct {
	levels map[string]int
}

func (f *fakeStock) GetStock(_ context.Context, productID string) (*clients.StockInfo, error) {
	available, ok := f.levels[productID]
	if !ok {
		return nil, clients.ErrStockNotFound
	}
	return &clients.StockInfo{ProductID: productID, Available: available}, nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []models.CheckoutEvent
	err    error
}

func (f *fakeProducer) SendCheckoutEvent(_ context.Context, event models.CheckoutEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, _ string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func setupRouter(store *fakeStore, stock *fakeStock, producer *fakeProducer, publisher *fakePublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{OrderTopicArn: "arn:aws:sns:us-east-1:000000000000:orders", IdemTTL: time.Hour}
	ctrl := controllers.NewCartController(store, stock, producer, publisher, cfg, zap.NewNop())
	r := gin.New()
	routes.SetupRoutes(r, ctrl)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCart_EmptyCartReturnsZeroTotals(t *testing.T) {
	r := setupRouter(newFakeStore(), &fakeStock{}, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodGet, "/cart/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var view models.CartView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.TotalCents != 0 || view.ItemCount != 0 {
		t.Errorf("expected empty cart, got total=%d count=%d", view.TotalCents, view.ItemCount)
	}
}

func TestAddItem_SnapshotsCeilingAndComputesTotals(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 8}}
	r := setupRouter(store, stock, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id":       "ring-1",
		"name":             "Gold Ring",
		"quantity":         2,
		"unit_price_cents": 10000,
		"discount_percent": 10,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var view models.CartView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.TotalCents != 18000 {
		t.Errorf("TotalCents = %d, want 18000", view.TotalCents)
	}
	if len(view.Items) != 1 || view.Items[0].StockCeiling != 8 {
		t.Errorf("expected one line with ceiling 8, got %+v", view.Items)
	}
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 8}}
	r := setupRouter(store, stock, &fakeProducer{}, &fakePublisher{})

	body := gin.H{"product_id": "ring-1", "quantity": 2, "unit_price_cents": 10000}
	doJSON(r, http.MethodPost, "/cart/items", body, nil)
	w := doJSON(r, http.MethodPost, "/cart/items", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var view models.CartView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.Items) != 1 || view.Items[0].Quantity != 4 {
		t.Errorf("expected single merged line with qty 4, got %+v", view.Items)
	}
}

func TestAddItem_RejectsBeyondStockCeiling(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 3}}
	r := setupRouter(store, stock, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 5, "unit_price_cents": 10000,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestAddItem_UnknownProductTreatedAsOutOfStock(t *testing.T) {
	r := setupRouter(newFakeStore(), &fakeStock{}, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ghost", "quantity": 1, "unit_price_cents": 100,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestUpdateItem_ClampsToCeilingAndRemovesOnZero(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	r := setupRouter(store, stock, &fakeProducer{}, &fakePublisher{})

	doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 2, "unit_price_cents": 10000,
	}, nil)

	w := doJSON(r, http.MethodPut, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 50,
	}, nil)
	var view models.CartView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.Items) != 1 || view.Items[0].Quantity != 5 {
		t.Errorf("expected quantity clamped to 5, got %+v", view.Items)
	}

	w = doJSON(r, http.MethodPut, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 0,
	}, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.Items) != 0 {
		t.Errorf("expected line removed on zero quantity, got %+v", view.Items)
	}
}

func TestSaveConflictReturns409(t *testing.T) {
	store := newFakeStore()
	store.conflict = true
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	r := setupRouter(store, stock, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 1, "unit_price_cents": 100,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestCheckout_PublishesEventAndClearsCart(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	producer := &fakeProducer{}
	publisher := &fakePublisher{}
	r := setupRouter(store, stock, producer, publisher)

	doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 2, "unit_price_cents": 10000, "discount_percent": 10,
	}, nil)

	w := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	if len(producer.events) != 1 {
		t.Fatalf("expected 1 kafka event, got %d", len(producer.events))
	}
	event := producer.events[0]
	if event.Event != models.CheckoutRequestedEvent || event.TotalCents != 18000 {
		t.Errorf("unexpected event: %+v", event)
	}
	if len(event.Items) != 1 || event.Items[0].Quantity != 2 {
		t.Errorf("unexpected event items: %+v", event.Items)
	}
	if len(publisher.messages) != 1 {
		t.Errorf("expected 1 SNS publish, got %d", len(publisher.messages))
	}

	if cart, _ := store.GetCart(context.Background(), "u1"); cart != nil {
		t.Errorf("expected cart cleared after checkout, got %+v", cart)
	}
}

func TestCheckout_ReplayReturnsSameOrder(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	producer := &fakeProducer{}
	r := setupRouter(store, stock, producer, &fakePublisher{})

	doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 1, "unit_price_cents": 5000,
	}, nil)

	first := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	second := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})

	var a, b struct {
		OrderID  string `json:"order_id"`
		Replayed bool   `json:"replayed"`
	}
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(second.Body.Bytes(), &b)

	if a.OrderID == "" || a.OrderID != b.OrderID {
		t.Errorf("expected same order id on replay, got %q and %q", a.OrderID, b.OrderID)
	}
	if !b.Replayed {
		t.Error("expected replayed flag on second checkout")
	}
	if len(producer.events) != 1 {
		t.Errorf("expected no republish on replay, got %d events", len(producer.events))
	}
}

func TestCheckout_MissingIdempotencyKeyRejected(t *testing.T) {
	r := setupRouter(newFakeStore(), &fakeStock{}, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/checkout", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	r := setupRouter(newFakeStore(), &fakeStock{}, &fakeProducer{}, &fakePublisher{})

	w := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckout_KafkaFailureDoesNotClearCart(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	producer := &fakeProducer{err: fmt.Errorf("broker down")}
	r := setupRouter(store, stock, producer, &fakePublisher{})

	doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 1, "unit_price_cents": 5000,
	}, nil)

	w := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	if cart, _ := store.GetCart(context.Background(), "u1"); cart == nil || len(cart.Items) != 1 {
		t.Error("expected cart preserved after failed publish")
	}
	if id, _ := store.GetIdempotency(context.Background(), "k1"); id != "" {
		t.Error("expected reserved key released after failed publish")
	}
}

func TestCheckout_IdempotencyWriteFailureFailsBeforePublish(t *testing.T) {
	store := newFakeStore()
	store.idemSetErr = fmt.Errorf("redis down")
	stock := &fakeStock{levels: map[string]int{"ring-1": 5}}
	producer := &fakeProducer{}
	r := setupRouter(store, stock, producer, &fakePublisher{})

	doJSON(r, http.MethodPost, "/cart/items", gin.H{
		"product_id": "ring-1", "quantity": 1, "unit_price_cents": 5000,
	}, nil)

	first := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	second := doJSON(r, http.MethodPost, "/cart/checkout", nil, map[string]string{"Idempotency-Key": "k1"})
	if first.Code != http.StatusInternalServerError || second.Code != http.StatusInternalServerError {
		t.Fatalf("statuses = %d/%d, want 500/500", first.Code, second.Code)
	}

	// The key is reserved before anything is published, so a checkout that
	// cannot record its key must publish nothing no matter how often the
	// client retries.
	if len(producer.events) != 0 {
		t.Errorf("expected no events when key cannot be recorded, got %d", len(producer.events))
	}
	if cart, _ := store.GetCart(context.Background(), "u1"); cart == nil || len(cart.Items) != 1 {
		t.Error("expected cart preserved after failed checkout")
	}
}

func TestRequestsWithoutIdentityRejected(t *testing.T) {
	r := setupRouter(newFakeStore(), &fakeStock{}, &fakeProducer{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/cart/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
