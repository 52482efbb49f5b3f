package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/sender"
)

const sendAttempts = 3

type NotificationService interface {
	ProcessStockAlert(ctx context.Context, payload *models.StockAlertPayload) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id int64) (int64, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Dismiss(ctx context.Context, id int64) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	emailSender sender.EmailSender
	alertEmail  string
	metrics     *awspkg.MetricsClient
	logger      *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	emailSender sender.EmailSender,
	alertEmail string,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:        repo,
		emailSender: emailSender,
		alertEmail:  alertEmail,
		metrics:     metrics,
		logger:      logger,
	}
}

// ProcessStockAlert stores one alert per (product, type) and emails the
// merchandising address. A still-active alert for the same product and type
// suppresses the duplicate entirely.
func (s *notificationService) ProcessStockAlert(ctx context.Context, payload *models.StockAlertPayload) error {
	alertType := payload.Status
	if alertType != models.TypeLowStock && alertType != models.TypeOutStock {
		return fmt.Errorf("unsupported alert status: %s", payload.Status)
	}

	existing, err := s.repo.FindActive(ctx, payload.ProductID, alertType)
	if err != nil {
		return fmt.Errorf("dedup lookup failed: %w", err)
	}
	if existing != nil {
		s.logger.Debug("duplicate stock alert suppressed",
			zap.String("product_id", payload.ProductID),
			zap.String("type", alertType),
		)
		s.recordCount(ctx, awspkg.MetricAlertsDeduped)
		return nil
	}

	notification := &models.Notification{
		ProductID:   payload.ProductID,
		Type:        alertType,
		Available:   payload.Available,
		Threshold:   payload.Threshold,
		Message:     alertMessage(payload),
		EmailStatus: models.EmailStatusSkipped,
	}
	if err := s.repo.Save(ctx, notification); err != nil {
		// Another consumer won the insert race between the dedup lookup
		// and here; the unique index makes the loser a no-op.
		if errors.Is(err, repository.ErrDuplicateActiveAlert) {
			s.recordCount(ctx, awspkg.MetricAlertsDeduped)
			return nil
		}
		return fmt.Errorf("failed to save notification: %w", err)
	}
	s.recordCount(ctx, awspkg.MetricAlertsCreated)

	if s.emailSender == nil || s.alertEmail == "" {
		return nil
	}
	s.sendAlertEmail(ctx, notification)
	return nil
}

func (s *notificationService) sendAlertEmail(ctx context.Context, n *models.Notification) {
	subject := fmt.Sprintf("Stock alert: %s is %s", n.ProductID, n.Type)
	body := fmt.Sprintf(
		"<p>%s</p><p>Units remaining: <strong>%d</strong> (threshold %d)</p>",
		n.Message, n.Available, n.Threshold,
	)

	var lastErr error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		_, lastErr = s.emailSender.SendEmail(ctx, s.alertEmail, subject, body)
		if lastErr == nil {
			if err := s.repo.UpdateEmailStatus(ctx, n.ID, models.EmailStatusSent, "", attempt); err != nil {
				s.logger.Warn("failed to record email status", zap.Error(err))
			}
			s.recordCount(ctx, awspkg.MetricEmailsSent)
			return
		}
	}

	s.logger.Error("alert email failed after retries",
		zap.Int64("notification_id", n.ID),
		zap.Error(lastErr),
	)
	if err := s.repo.UpdateEmailStatus(ctx, n.ID, models.EmailStatusFailed, lastErr.Error(), sendAttempts); err != nil {
		s.logger.Warn("failed to record email status", zap.Error(err))
	}
	s.recordCount(ctx, awspkg.MetricEmailSendFailures)
}

func alertMessage(payload *models.StockAlertPayload) string {
	if payload.Status == models.TypeOutStock {
		return fmt.Sprintf("Product %s is out of stock.", payload.ProductID)
	}
	return fmt.Sprintf("Product %s is running low: %d left.", payload.ProductID, payload.Available)
}

func (s *notificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) (int64, error) {
	return s.repo.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

func (s *notificationService) Dismiss(ctx context.Context, id int64) (int64, error) {
	return s.repo.Dismiss(ctx, id)
}

func (s *notificationService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

func (s *notificationService) recordCount(ctx context.Context, metric string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "notification-service"})
}
