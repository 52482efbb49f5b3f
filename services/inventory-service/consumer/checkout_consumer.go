package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/models"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/services"
)

// CheckoutConsumer applies completed checkouts to inventory. Messages arrive
// on SQS via the order-events SNS topic, so the body carries an SNS envelope.
type CheckoutConsumer struct {
	consumer *awspkg.SQSConsumer
	service  *services.InventoryService
	logger   *zap.Logger
}

func NewCheckoutConsumer(consumer *awspkg.SQSConsumer, service *services.InventoryService, logger *zap.Logger) *CheckoutConsumer {
	return &CheckoutConsumer{consumer: consumer, service: service, logger: logger}
}

func (c *CheckoutConsumer) Start(ctx context.Context) {
	c.consumer.Start(ctx, c.handle)
}

// snsEnvelope unwraps the SNS → SQS message wrapper.
type snsEnvelope struct {
	Message string `json:"Message"`
}

func (c *CheckoutConsumer) handle(ctx context.Context, body string) error {
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil || envelope.Message == "" {
		// Not SNS-wrapped; treat the body as the event itself.
		envelope.Message = body
	}

	var event models.CheckoutEvent
	if err := json.Unmarshal([]byte(envelope.Message), &event); err != nil {
		c.logger.Error("unparseable checkout event, dropping", zap.Error(err))
		return nil // deleting avoids an endless redelivery loop
	}
	if len(event.Items) == 0 {
		c.logger.Warn("checkout event with no items",
			zap.String("order_id", event.OrderID))
		return nil
	}

	results, err := c.service.ReduceStock(ctx, event.OrderID, event.Items)
	if err != nil {
		return fmt.Errorf("reconcile order %s: %w", event.OrderID, err)
	}

	c.logger.Info("checkout reconciled",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int("lines", len(results)))
	return nil
}
