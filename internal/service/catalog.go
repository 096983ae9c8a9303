package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// Catalog serves product reads through the cache and keeps it coherent on writes.
// A nil cache disables caching.
type Catalog struct {
	store  ProductStore
	cache  ProductCache
	logger *zap.Logger
}

func NewCatalog(store ProductStore, cache ProductCache, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{store: store, cache: cache, logger: logger}
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", global.InvalidArgument("product code is required").
			WithFields([]global.ValidationError{{Field: "code", Message: "code is required", Code: "required"}})
	}
	return code, nil
}

// Product returns the product for code, reporting hits with cached=true
func (c *Catalog) Product(ctx context.Context, code string) (product *models.Product, cached bool, err error) {
	code, err = normalizeCode(code)
	if err != nil {
		return nil, false, err
	}

	if c.cache != nil {
		product, ok, err := c.cache.GetProduct(ctx, code)
		if err != nil {
			c.logger.Warn("product cache read failed", zap.String("code", code), zap.Error(err))
		} else if ok {
			return product, true, nil
		}
	}

	product, err = c.store.GetProduct(ctx, code)
	if err != nil {
		return nil, false, err
	}

	if c.cache != nil {
		if err := c.cache.CacheProduct(ctx, product); err != nil {
			c.logger.Warn("failed to cache product", zap.String("code", code), zap.Error(err))
		}
	}
	return product, false, nil
}

func (c *Catalog) List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q.Normalize()
	return c.store.ListProducts(ctx, q)
}

// Upsert creates or replaces the product stored under code
func (c *Catalog) Upsert(ctx context.Context, code string, req *models.UpsertProductRequest) (*models.Product, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	petType, ok := models.ParsePetType(req.Type)
	if !ok {
		return nil, global.InvalidArgument("invalid product type %q", req.Type).
			WithFields([]global.ValidationError{{Field: "type", Message: "must be one of DOG, CAT, BIRD, FISH, OTHER", Code: "oneof"}})
	}

	saved, err := c.store.UpsertProduct(ctx, req.ToProduct(code, petType))
	if err != nil {
		return nil, err
	}
	c.Evict(ctx, code)
	return saved, nil
}

func (c *Catalog) Delete(ctx context.Context, code string) error {
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}
	if err := c.store.DeleteProduct(ctx, code); err != nil {
		return err
	}
	c.Evict(ctx, code)
	return nil
}

// Evict drops code from the cache. Failures only leave a stale entry until its TTL.
func (c *Catalog) Evict(ctx context.Context, code string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.EvictProduct(ctx, code); err != nil {
		c.logger.Warn("failed to evict product from cache", zap.String("code", code), zap.Error(err))
	}
}
