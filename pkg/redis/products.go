package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/petmart/pkg/models"
)

const DefaultProductCacheTTL = 24 * time.Hour

const recentProductsKey = "products:recent"

// ProductCache is a read-through copy of catalog entries keyed by product code
type ProductCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewProductCache(client *redisclient.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(code string) string {
	return fmt.Sprintf("product:%s", code)
}

// GetProduct reports a miss with ok=false and a nil error
func (pc *ProductCache) GetProduct(ctx context.Context, code string) (*models.Product, bool, error) {
	productJSON, err := pc.client.Get(ctx, productKey(code)).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, true, nil
}

// CacheProduct stores a single product and records it as recently viewed
func (pc *ProductCache) CacheProduct(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.Code, err)
	}

	pipe := pc.client.TxPipeline()
	pipe.Set(ctx, productKey(product.Code), productJSON, pc.ttl)
	pipe.LRem(ctx, recentProductsKey, 0, product.Code)
	pipe.LPush(ctx, recentProductsKey, product.Code)
	// Keep only the 100 most recent products
	pipe.LTrim(ctx, recentProductsKey, 0, 99)
	pipe.Expire(ctx, recentProductsKey, pc.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for product %s: %w", product.Code, err)
	}
	return nil
}

// EvictProduct removes a product and its recent-list entry
func (pc *ProductCache) EvictProduct(ctx context.Context, code string) error {
	pipe := pc.client.TxPipeline()
	pipe.Del(ctx, productKey(code))
	pipe.LRem(ctx, recentProductsKey, 0, code)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove product %s from Redis cache: %w", code, err)
	}
	return nil
}

// RecentProducts lists the codes most recently cached, newest first
func (pc *ProductCache) RecentProducts(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	return pc.client.LRange(ctx, recentProductsKey, 0, limit-1).Result()
}
