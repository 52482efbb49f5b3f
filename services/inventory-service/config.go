package main

import (
	"context"
	"os"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
)

// Config holds all configuration for the inventory-service.
type Config struct {
	Port             string // Service port (default: 8084)
	DDBTable         string // DynamoDB table name for inventory
	AlertTopicArn    string // SNS topic for low/out-of-stock alerts
	CheckoutQueue    string // SQS queue name carrying checkout events
	CheckoutQueueURL string // Full queue URL; overrides CheckoutQueue when set
}

// LoadConfig loads environment variables into a Config struct. When
// AWS_USE_SECRETS=true the alert topic ARN may come from Secrets Manager.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             os.Getenv("PORT"),
		DDBTable:         os.Getenv("DDB_TABLE_INVENTORY"),
		AlertTopicArn:    os.Getenv("STOCK_ALERT_TOPIC_ARN"),
		CheckoutQueue:    os.Getenv("CHECKOUT_QUEUE_NAME"),
		CheckoutQueueURL: os.Getenv("CHECKOUT_QUEUE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8084"
	}
	if cfg.DDBTable == "" {
		cfg.DDBTable = "Inventory"
	}
	if cfg.CheckoutQueue == "" {
		cfg.CheckoutQueue = "checkout-events"
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if arn, ok := sm.Lookup(context.Background(), "inventory/STOCK_ALERT_TOPIC_ARN"); ok {
				cfg.AlertTopicArn = arn
			}
		}
	}

	return cfg, nil
}
