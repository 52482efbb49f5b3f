package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// MessageHandler processes one SQS message body. Returning an error leaves
// the message on the queue; it becomes visible again after the visibility
// timeout and is retried (or shipped to a DLQ if one is configured).
type MessageHandler func(ctx context.Context, body string) error

// SQSConsumer long-polls a single queue and dispatches messages to a handler.
type SQSConsumer struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
}

func NewSQSConsumer(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		logger:   logger,
	}
}

// Start polls until the context is cancelled.
func (c *SQSConsumer) Start(ctx context.Context, handler MessageHandler) {
	c.logger.Info("sqs consumer started", zap.String("queue", c.queueURL))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("sqs consumer shutting down")
			return
		default:
			c.poll(ctx, handler)
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context, handler MessageHandler) {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20, // long polling
		VisibilityTimeout:   30,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("sqs receive error", zap.Error(err))
		time.Sleep(5 * time.Second)
		return
	}

	for _, msg := range out.Messages {
		if msg.Body == nil || *msg.Body == "" {
			continue
		}
		if err := handler(ctx, *msg.Body); err != nil {
			c.logger.Error("failed to process sqs message", zap.Error(err))
			continue // retried after visibility timeout
		}
		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &c.queueURL,
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			c.logger.Error("failed to delete sqs message", zap.Error(err))
		}
	}
}

// GetQueueURL resolves a queue name to its URL.
func GetQueueURL(ctx context.Context, cfg sdkaws.Config, queueName string) (string, error) {
	client := sqs.NewFromConfig(cfg)
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: &queueName})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL for %s: %w", queueName, err)
	}
	return *out.QueueUrl, nil
}
