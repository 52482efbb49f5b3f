package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/clients"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/config"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/database"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/kafka"
	"github.com/aureliajewelry/storefront-backend/services/cart-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/common/logger"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := config.Load()

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	awsCfg, err := awspkg.LoadConfig(context.Background())
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}
	snsClient := awspkg.NewSNSClient(awsCfg)

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	store := database.NewCartRepository(redisClient, cfg.CartTTL)
	stockClient := clients.NewInventoryClient(cfg.InventoryURL)
	ctrl := controllers.NewCartController(store, stockClient, producer, snsClient, cfg, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.CloudWatchMetrics(metricsClient, "cart-service"))

	routes.SetupRoutes(r, ctrl)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("cart service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
