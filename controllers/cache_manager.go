package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const FeaturedProductsKey = "featured_products"

// CacheManager keeps the featured product list in Redis. Every failure is
// logged and treated as a miss.
type CacheManager struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewCacheManager(client *redis.Client, logger *zap.Logger) *CacheManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheManager{redis: client, logger: logger}
}

func (cm *CacheManager) GetFeatured(ctx context.Context) ([]models.Product, bool) {
	if cm == nil || cm.redis == nil {
		return nil, false
	}
	data, err := cm.redis.Get(ctx, FeaturedProductsKey).Result()
	if err != nil {
		if err != redis.Nil {
			cm.logger.Warn("failed to read featured products cache", zap.Error(err))
		}
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		cm.logger.Warn("failed to unmarshal cached featured products", zap.Error(err))
		return nil, false
	}
	return products, true
}

// SetFeaturedAsync caches products in the background.
func (cm *CacheManager) SetFeaturedAsync(products []models.Product) {
	if cm == nil || cm.redis == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		cm.logger.Warn("failed to marshal featured products for cache", zap.Error(err))
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cm.redis.Set(bgCtx, FeaturedProductsKey, data, 0).Err(); err != nil {
			cm.logger.Warn("failed to cache featured products", zap.Error(err))
		}
	}()
}

func (cm *CacheManager) InvalidateFeatured(ctx context.Context) {
	if cm == nil || cm.redis == nil {
		return
	}
	if err := cm.redis.Del(ctx, FeaturedProductsKey).Err(); err != nil {
		cm.logger.Warn("failed to clear featured products cache", zap.Error(err))
	}
}
