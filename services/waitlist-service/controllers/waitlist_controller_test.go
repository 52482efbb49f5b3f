package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/models"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/services"
)

type fakeWaitlistService struct {
	joined      []string
	invoicesTo  []string
	lastInvoice models.Invoice
	loginToken  string
	loginErr    error
}

func (f *fakeWaitlistService) Join(_ context.Context, email, _ string) error {
	f.joined = append(f.joined, email)
	return nil
}

func (f *fakeWaitlistService) Login(_ context.Context, _, _ string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeWaitlistService) SubscribeNewsletter(_ context.Context, _ string) error {
	return nil
}

func (f *fakeWaitlistService) SendInvoice(_ context.Context, to string, invoice models.Invoice, _ models.SenderInfo) error {
	f.invoicesTo = append(f.invoicesTo, to)
	f.lastInvoice = invoice
	return nil
}

func setupRouter(fake *fakeWaitlistService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := controllers.NewWaitlistController(fake, zap.NewNop())
	r := gin.New()
	routes.RegisterRoutes(r, ctrl)
	return r
}

func postJSON(r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendEmail_EmptyBodyRejected(t *testing.T) {
	r := setupRouter(&fakeWaitlistService{})

	w := postJSON(r, "/api/send-email", "{}")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Missing required fields") {
		t.Errorf("expected missing-fields error, got %s", w.Body.String())
	}
}

func TestSendEmail_RequiresInvoice(t *testing.T) {
	r := setupRouter(&fakeWaitlistService{})

	w := postJSON(r, "/api/send-email", `{"recipientEmail": "a@b.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSendEmail_Success(t *testing.T) {
	fake := &fakeWaitlistService{}
	r := setupRouter(fake)

	body := `{
		"recipientEmail": "customer@example.com",
		"invoice": {
			"order_id": "ord-1",
			"items": [{"name": "Gold Ring", "quantity": 1, "price_cents": 10000, "total_cents": 10000}],
			"total_cents": 10000
		},
		"senderInfo": {"name": "AURELIA"}
	}`
	w := postJSON(r, "/api/send-email", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if len(fake.invoicesTo) != 1 || fake.invoicesTo[0] != "customer@example.com" {
		t.Errorf("unexpected invoice recipients: %v", fake.invoicesTo)
	}
	if fake.lastInvoice.OrderID != "ord-1" {
		t.Errorf("OrderID = %q, want ord-1", fake.lastInvoice.OrderID)
	}

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["success"] != true {
		t.Errorf("expected success envelope, got %v", resp)
	}
}

func TestSendEmail_RejectsNonPOST(t *testing.T) {
	r := setupRouter(&fakeWaitlistService{})

	req := httptest.NewRequest(http.MethodGet, "/api/send-email", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestJoin_ValidatesEmail(t *testing.T) {
	r := setupRouter(&fakeWaitlistService{})

	w := postJSON(r, "/api/waitlist", `{"email": "not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestJoin_Success(t *testing.T) {
	fake := &fakeWaitlistService{}
	r := setupRouter(fake)

	w := postJSON(r, "/api/waitlist", `{"email": "vip@example.com", "magicLink": "https://shop.example/enter"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if len(fake.joined) != 1 || fake.joined[0] != "vip@example.com" {
		t.Errorf("unexpected joins: %v", fake.joined)
	}
}

func TestLogin_InvalidPasscodeUnauthorized(t *testing.T) {
	fake := &fakeWaitlistService{loginErr: services.ErrInvalidPasscode}
	r := setupRouter(fake)

	w := postJSON(r, "/api/login", `{"email": "vip@example.com", "passcode": "123456"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogin_ValidatesPasscodeShape(t *testing.T) {
	r := setupRouter(&fakeWaitlistService{loginToken: "t"})

	for _, passcode := range []string{"12345", "1234567", "abcdef", ""} {
		w := postJSON(r, "/api/login", `{"email": "vip@example.com", "passcode": "`+passcode+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("passcode %q: status = %d, want 400", passcode, w.Code)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	fake := &fakeWaitlistService{loginToken: "jwt-token"}
	r := setupRouter(fake)

	w := postJSON(r, "/api/login", `{"email": "vip@example.com", "passcode": "123456"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "jwt-token") {
		t.Errorf("expected token in response, got %s", w.Body.String())
	}
}
