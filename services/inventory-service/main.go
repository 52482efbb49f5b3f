package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/common/logger"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/consumer"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadConfig(context.Background())
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}

	ddbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if ep := os.Getenv("AWS_ENDPOINT"); ep != "" {
			o.BaseEndpoint = sdkaws.String(ep)
		}
	})

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	repo := repository.NewDynamoInventoryRepository(ddbClient, cfg.DDBTable)
	snsClient := awspkg.NewSNSClient(awsCfg)
	svc := services.NewInventoryService(repo, snsClient, cfg.AlertTopicArn, metricsClient, log)
	ctrl := controllers.NewInventoryController(svc, log)

	// Checkout event consumer
	queueURL := cfg.CheckoutQueueURL
	if queueURL == "" {
		queueURL, err = awspkg.GetQueueURL(context.Background(), awsCfg, cfg.CheckoutQueue)
		if err != nil {
			log.Fatal("failed to resolve checkout queue", zap.Error(err))
		}
	}
	checkoutConsumer := consumer.NewCheckoutConsumer(
		awspkg.NewSQSConsumer(awsCfg, queueURL, log), svc, log)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	go checkoutConsumer.Start(consumerCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.CloudWatchMetrics(metricsClient, "inventory-service"))

	routes.RegisterRoutes(r, ctrl)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("inventory service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("initiating graceful shutdown")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
