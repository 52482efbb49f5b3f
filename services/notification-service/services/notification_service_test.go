package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/sender"
)

type fakeRepo struct {
	mu             sync.Mutex
	nextID         int64
	alerts         []*models.Notification
	findActiveMiss bool // simulate a lookup racing an insert
}

// Save enforces the same partial uniqueness as the database index: at most
// one undismissed row per (product, type).
func (f *fakeRepo) Save(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ProductID == n.ProductID && a.Type == n.Type && !a.Dismissed {
			return repository.ErrDuplicateActiveAlert
		}
	}
	f.nextID++
	n.ID = f.nextID
	cp := *n
	f.alerts = append(f.alerts, &cp)
	return nil
}

func (f *fakeRepo) FindActive(_ context.Context, productID, alertType string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findActiveMiss {
		return nil, nil
	}
	for _, a := range f.alerts {
		if a.ProductID == productID && a.Type == alertType && !a.Dismissed {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, _ models.NotificationFilter) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, a := range f.alerts {
		if !a.Dismissed {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) MarkRead(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeRepo) Dismiss(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.Dismissed = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRepo) ClearAll(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeRepo) UpdateEmailStatus(_ context.Context, id int64, status, emailErr string, retries int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.EmailStatus = status
			a.EmailError = emailErr
			a.RetryCount = retries
		}
	}
	return nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failures int // fail this many sends before succeeding
}

func (f *fakeSender) SendEmail(_ context.Context, to, subject, _ string) (sender.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return sender.SendResult{}, errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, to+": "+subject)
	return sender.SendResult{MessageID: "m1"}, nil
}

func lowStockAlert(productID string, available int) *models.StockAlertPayload {
	return &models.StockAlertPayload{
		Event:     "inventory.stock_alert",
		ProductID: productID,
		Status:    models.TypeLowStock,
		Available: available,
		Threshold: 5,
	}
}

func TestProcessStockAlert_CreatesAndEmails(t *testing.T) {
	repo := &fakeRepo{}
	mail := &fakeSender{}
	svc := NewNotificationService(repo, mail, "stock@aurelia.example", nil, zap.NewNop())

	if err := svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 3)); err != nil {
		t.Fatalf("ProcessStockAlert: %v", err)
	}

	if len(repo.alerts) != 1 {
		t.Fatalf("expected 1 alert saved, got %d", len(repo.alerts))
	}
	if repo.alerts[0].EmailStatus != models.EmailStatusSent {
		t.Errorf("EmailStatus = %q, want sent", repo.alerts[0].EmailStatus)
	}
	if len(mail.sent) != 1 {
		t.Errorf("expected 1 email, got %d", len(mail.sent))
	}
}

func TestProcessStockAlert_DeduplicatesActiveAlert(t *testing.T) {
	repo := &fakeRepo{}
	mail := &fakeSender{}
	svc := NewNotificationService(repo, mail, "stock@aurelia.example", nil, zap.NewNop())

	_ = svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 4))
	_ = svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 3))

	if len(repo.alerts) != 1 {
		t.Fatalf("expected duplicate suppressed, got %d alerts", len(repo.alerts))
	}
	if len(mail.sent) != 1 {
		t.Errorf("expected 1 email, got %d", len(mail.sent))
	}
}

// Two consumers can both pass the dedup lookup for the same alert; the
// unique index turns the losing insert into a quiet no-op with no second
// email.
func TestProcessStockAlert_InsertRaceSuppressedByUniqueIndex(t *testing.T) {
	repo := &fakeRepo{}
	mail := &fakeSender{}
	svc := NewNotificationService(repo, mail, "stock@aurelia.example", nil, zap.NewNop())

	if err := svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 4)); err != nil {
		t.Fatalf("first ProcessStockAlert: %v", err)
	}

	repo.findActiveMiss = true
	if err := svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 3)); err != nil {
		t.Fatalf("racing ProcessStockAlert should be a no-op, got %v", err)
	}

	if len(repo.alerts) != 1 {
		t.Fatalf("expected 1 alert after insert race, got %d", len(repo.alerts))
	}
	if len(mail.sent) != 1 {
		t.Errorf("expected 1 email after insert race, got %d", len(mail.sent))
	}
}

func TestProcessStockAlert_DismissedAlertAllowsNewOne(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo, &fakeSender{}, "stock@aurelia.example", nil, zap.NewNop())

	_ = svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 4))
	if _, err := svc.Dismiss(context.Background(), repo.alerts[0].ID); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	_ = svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 2))

	if len(repo.alerts) != 2 {
		t.Fatalf("expected fresh alert after dismissal, got %d alerts", len(repo.alerts))
	}
}

func TestProcessStockAlert_DifferentTypesAreSeparate(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewNotificationService(repo, &fakeSender{}, "stock@aurelia.example", nil, zap.NewNop())

	_ = svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 4))

	out := lowStockAlert("ring-1", 0)
	out.Status = models.TypeOutStock
	_ = svc.ProcessStockAlert(context.Background(), out)

	if len(repo.alerts) != 2 {
		t.Fatalf("expected separate low and out alerts, got %d", len(repo.alerts))
	}
}

func TestProcessStockAlert_RetriesTransientSendFailure(t *testing.T) {
	repo := &fakeRepo{}
	mail := &fakeSender{failures: 2}
	svc := NewNotificationService(repo, mail, "stock@aurelia.example", nil, zap.NewNop())

	if err := svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 3)); err != nil {
		t.Fatalf("ProcessStockAlert: %v", err)
	}

	if repo.alerts[0].EmailStatus != models.EmailStatusSent {
		t.Errorf("EmailStatus = %q, want sent after retries", repo.alerts[0].EmailStatus)
	}
	if repo.alerts[0].RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", repo.alerts[0].RetryCount)
	}
}

func TestProcessStockAlert_RecordsPermanentSendFailure(t *testing.T) {
	repo := &fakeRepo{}
	mail := &fakeSender{failures: 10}
	svc := NewNotificationService(repo, mail, "stock@aurelia.example", nil, zap.NewNop())

	if err := svc.ProcessStockAlert(context.Background(), lowStockAlert("ring-1", 3)); err != nil {
		t.Fatalf("ProcessStockAlert: %v", err)
	}

	// Alert survives even when email delivery fails for good.
	if len(repo.alerts) != 1 {
		t.Fatalf("expected alert saved, got %d", len(repo.alerts))
	}
	if repo.alerts[0].EmailStatus != models.EmailStatusFailed {
		t.Errorf("EmailStatus = %q, want failed", repo.alerts[0].EmailStatus)
	}
}

func TestProcessStockAlert_RejectsUnknownStatus(t *testing.T) {
	svc := NewNotificationService(&fakeRepo{}, &fakeSender{}, "", nil, zap.NewNop())

	bad := lowStockAlert("ring-1", 10)
	bad.Status = "in-stock"
	if err := svc.ProcessStockAlert(context.Background(), bad); err == nil {
		t.Fatal("expected error for non-alert status")
	}
}
