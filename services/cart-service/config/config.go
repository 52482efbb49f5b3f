package config

import (
	"os"
	"time"
)

type Config struct {
	Port          string
	RedisURL      string
	KafkaBrokers  string
	KafkaTopic    string
	OrderTopicArn string
	InventoryURL  string
	CartTTL       time.Duration
	IdemTTL       time.Duration
}

func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8086"),
		RedisURL:      getEnv("REDIS_URL", "redis://redis:6379"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "checkout.requested"),
		OrderTopicArn: os.Getenv("ORDER_TOPIC_ARN"),
		InventoryURL:  getEnv("INVENTORY_SERVICE_URL", "http://inventory-service:8084"),
		CartTTL:       time.Hour * 24 * 7, // carts survive a week of inactivity
		IdemTTL:       time.Hour * 24,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
