package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/catalog-service/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"

	defaultCacheTTL = 10 * time.Minute
)

// CacheManager caches product reads in Redis. List caches are versioned: a
// write bumps the version key so stale list entries simply expire unread.
type CacheManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheManager(client *redis.Client, logger *zap.Logger) *CacheManager {
	return &CacheManager{redis: client, ttl: defaultCacheTTL, logger: logger}
}

func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	data, err := cm.redis.Get(ctx, productCachePrefix+productID).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		cm.logger.Warn("failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a single product off the request path.
func (cm *CacheManager) SetProductAsync(productID string, product *models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			cm.logger.Warn("failed to marshal product for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, productCachePrefix+productID, data, cm.ttl).Err(); err != nil {
			cm.logger.Warn("failed to cache product", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

func (cm *CacheManager) GetProductList(ctx context.Context, key string) (map[string]interface{}, bool) {
	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	data, err := cm.redis.Get(ctx, cm.listKey(version, key)).Result()
	if err != nil {
		return nil, false
	}
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		cm.logger.Warn("failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return response, true
}

func (cm *CacheManager) SetProductListAsync(key string, response map[string]interface{}) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}
		data, err := json.Marshal(response)
		if err != nil {
			cm.logger.Warn("failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, cm.listKey(version, key), data, cm.ttl).Err(); err != nil {
			cm.logger.Warn("failed to cache product list", zap.Error(err))
		}
	}()
}

// InvalidateProduct bumps the list version and drops the detail entry.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, productID string) {
	if err := cm.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		cm.logger.Error("failed to invalidate list cache", zap.Error(err), zap.String("product_id", productID))
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cm.redis.Del(bgCtx, productCachePrefix+productID).Err(); err != nil {
			cm.logger.Warn("failed to delete product cache", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if err == redis.Nil {
			if err := cm.redis.Set(ctx, cacheVersionKey, 1, 0).Err(); err == nil {
				return 1, nil
			}
		}
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func (cm *CacheManager) listKey(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", productListCachePrefix, version, key)
}
