package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/services"
)

// AlertConsumer turns inventory stock alerts into persisted notifications.
// Messages arrive on SQS via the stock-alerts SNS topic.
type AlertConsumer struct {
	consumer *awspkg.SQSConsumer
	service  services.NotificationService
	logger   *zap.Logger
}

func NewAlertConsumer(consumer *awspkg.SQSConsumer, service services.NotificationService, logger *zap.Logger) *AlertConsumer {
	return &AlertConsumer{consumer: consumer, service: service, logger: logger}
}

func (c *AlertConsumer) Start(ctx context.Context) {
	c.consumer.Start(ctx, c.handle)
}

type snsEnvelope struct {
	Message string `json:"Message"`
}

func (c *AlertConsumer) handle(ctx context.Context, body string) error {
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil || envelope.Message == "" {
		envelope.Message = body
	}

	var payload models.StockAlertPayload
	if err := json.Unmarshal([]byte(envelope.Message), &payload); err != nil {
		c.logger.Error("unparseable stock alert, dropping", zap.Error(err))
		return nil
	}
	if payload.ProductID == "" {
		c.logger.Warn("stock alert without product id, dropping")
		return nil
	}

	if err := c.service.ProcessStockAlert(ctx, &payload); err != nil {
		return fmt.Errorf("process alert for %s: %w", payload.ProductID, err)
	}
	return nil
}
