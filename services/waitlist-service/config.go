package main

import "os"

// Config holds all configuration for the waitlist-service.
type Config struct {
	Port          string // Service port (default: 5000)
	AllowedOrigin string // Single storefront origin allowed by CORS
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}

	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:3000"
	}

	return cfg
}
