package main

import "os"

// Config holds the gateway's own port plus the base URLs of every
// downstream service.
type Config struct {
	Port          string
	AllowedOrigin string

	CatalogURL      string
	InventoryURL    string
	NotificationURL string
	CartURL         string
	WaitlistURL     string
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:            os.Getenv("PORT"),
		AllowedOrigin:   os.Getenv("ALLOWED_ORIGIN"),
		CatalogURL:      os.Getenv("CATALOG_SERVICE_URL"),
		InventoryURL:    os.Getenv("INVENTORY_SERVICE_URL"),
		NotificationURL: os.Getenv("NOTIFICATION_SERVICE_URL"),
		CartURL:         os.Getenv("CART_SERVICE_URL"),
		WaitlistURL:     os.Getenv("WAITLIST_SERVICE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:3000"
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = "http://catalog-service:8083"
	}
	if cfg.InventoryURL == "" {
		cfg.InventoryURL = "http://inventory-service:8084"
	}
	if cfg.NotificationURL == "" {
		cfg.NotificationURL = "http://notification-service:8085"
	}
	if cfg.CartURL == "" {
		cfg.CartURL = "http://cart-service:8086"
	}
	if cfg.WaitlistURL == "" {
		cfg.WaitlistURL = "http://waitlist-service:5000"
	}

	return cfg
}
