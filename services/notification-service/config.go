package main

import (
	"context"
	"os"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/sender"
)

// Config holds all configuration for the notification-service.
type Config struct {
	Port          string // Service port (default: 8085)
	AlertQueue    string // SQS queue name carrying stock alerts
	AlertQueueURL string // Full queue URL; overrides AlertQueue when set
	AlertEmail    string // Merchandising address receiving stock alerts
	SMTP          sender.SMTPConfig
}

// LoadConfig loads environment variables into a Config struct. When
// AWS_USE_SECRETS=true the alert address may come from Secrets Manager.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		AlertQueue:    os.Getenv("ALERT_QUEUE_NAME"),
		AlertQueueURL: os.Getenv("ALERT_QUEUE_URL"),
		AlertEmail:    os.Getenv("STOCK_ALERT_EMAIL"),
		SMTP: sender.SMTPConfig{
			Host:        os.Getenv("SMTP_HOST"),
			Port:        os.Getenv("SMTP_PORT"),
			Username:    os.Getenv("SMTP_USER"),
			Password:    os.Getenv("SMTP_PASS"),
			FromAddress: os.Getenv("SMTP_FROM"),
			FromName:    os.Getenv("SMTP_FROM_NAME"),
		},
	}

	if cfg.Port == "" {
		cfg.Port = "8085"
	}
	if cfg.AlertQueue == "" {
		cfg.AlertQueue = "stock-alerts"
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if email, ok := sm.Lookup(context.Background(), "notification/STOCK_ALERT_EMAIL"); ok {
				cfg.AlertEmail = email
			}
			if pass, ok := sm.Lookup(context.Background(), "notification/SMTP_PASS"); ok {
				cfg.SMTP.Password = pass
			}
		}
	}

	return cfg, nil
}
