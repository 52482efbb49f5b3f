package main

import "os"

// Config holds all configuration for the catalog-service.
type Config struct {
	Port        string // Service port (default: 8083)
	MongoURL    string // Mongo connection string
	MongoDB     string // Database name
	RedisURL    string // Redis connection string for the read cache
	ImageBucket string // S3 bucket for product images
	PublicCDN   string // Public base URL serving uploaded images
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:        os.Getenv("PORT"),
		MongoURL:    os.Getenv("MONGO_URL"),
		MongoDB:     os.Getenv("MONGO_DB"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ImageBucket: os.Getenv("S3_BUCKET_IMAGES"),
		PublicCDN:   os.Getenv("PUBLIC_CDN_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8083"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "catalog"
	}
	if cfg.ImageBucket == "" {
		cfg.ImageBucket = "aurelia-product-images"
	}
	if cfg.PublicCDN == "" {
		cfg.PublicCDN = "https://images.aurelia.example"
	}

	return cfg
}
