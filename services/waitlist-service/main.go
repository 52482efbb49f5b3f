package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/common/db"
	"github.com/aureliajewelry/storefront-backend/services/common/logger"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/mailer"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := LoadConfig()

	mongoClient, database, err := db.ConnectMongo()
	if err != nil {
		log.Fatal("mongo connection failed", zap.Error(err))
	}
	defer db.Disconnect(mongoClient)

	repo := repository.NewWaitlistRepository(database)
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		log.Warn("failed to ensure waitlist indexes", zap.Error(err))
	}

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	mail, err := mailer.New()
	if err != nil {
		log.Fatal("mailer init failed", zap.Error(err))
	}

	svc := services.NewWaitlistService(repo, mail, metricsClient, log)
	ctrl := controllers.NewWaitlistController(svc, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.CloudWatchMetrics(metricsClient, "waitlist-service"))

	// Single-origin CORS: only the storefront may call these endpoints.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// The signup and login endpoints are unauthenticated, keep them slow.
	r.Use(middleware.RateLimit(rate.Limit(5), 10))

	routes.RegisterRoutes(r, ctrl)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("waitlist service started", zap.String("port", cfg.Port))
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
