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
	"github.com/aureliajewelry/storefront-backend/services/common/logger"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/consumer"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/database"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/sender"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	db, err := database.ConnectPostgres(log, &models.Notification{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer database.Close(db)

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// Email is optional: without SMTP config, alerts are dashboard-only.
	var emailSender sender.EmailSender
	if smtpSender, err := sender.NewSMTPSender(cfg.SMTP); err != nil {
		log.Warn("SMTP sender unavailable, alert emails disabled", zap.Error(err))
	} else {
		emailSender = smtpSender
	}

	repo := repository.NewNotificationRepository(db)
	svc := services.NewNotificationService(repo, emailSender, cfg.AlertEmail, metricsClient, log)
	ctrl := controllers.NewNotificationController(svc, log)

	awsCfg, err := awspkg.LoadConfig(context.Background())
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}
	queueURL := cfg.AlertQueueURL
	if queueURL == "" {
		queueURL, err = awspkg.GetQueueURL(context.Background(), awsCfg, cfg.AlertQueue)
		if err != nil {
			log.Fatal("failed to resolve alert queue", zap.Error(err))
		}
	}
	alertConsumer := consumer.NewAlertConsumer(
		awspkg.NewSQSConsumer(awsCfg, queueURL, log), svc, log)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	go alertConsumer.Start(consumerCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.CloudWatchMetrics(metricsClient, "notification-service"))

	routes.RegisterRoutes(r, ctrl)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("notification service started", zap.String("port", cfg.Port))
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
