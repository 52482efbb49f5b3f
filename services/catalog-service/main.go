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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/controllers"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/routes"
	"github.com/aureliajewelry/storefront-backend/services/catalog-service/services"
	"github.com/aureliajewelry/storefront-backend/services/common/db"
	"github.com/aureliajewelry/storefront-backend/services/common/logger"
	"github.com/aureliajewelry/storefront-backend/services/common/middleware"
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

	productRepo := repository.NewProductRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	if err := productRepo.EnsureIndexes(context.Background()); err != nil {
		log.Warn("failed to ensure product indexes", zap.Error(err))
	}

	// Read cache is optional: the service degrades to Mongo-only reads.
	var cache *services.CacheManager
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, product cache disabled", zap.Error(err))
		} else {
			cache = services.NewCacheManager(redisClient, log)
			defer redisClient.Close()
		}
	}

	awsCfg, err := awspkg.LoadConfig(context.Background())
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}
	s3Client := awspkg.NewS3Client(awsCfg)

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	productService := services.NewProductService(
		productRepo, categoryRepo, cache, s3Client, cfg.ImageBucket, cfg.PublicCDN, log)
	categoryService := services.NewCategoryService(categoryRepo)

	productController := controllers.NewProductController(productService, cache, log)
	categoryController := controllers.NewCategoryController(categoryService, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.CloudWatchMetrics(metricsClient, "catalog-service"))

	routes.RegisterRoutes(r, productController, categoryController)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("catalog service started", zap.String("port", cfg.Port))
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
