// internal/cache/catalog.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/models"
	"github.com/kanistore/storefront/internal/services"
	"github.com/kanistore/storefront/internal/utils"
)

// CatalogCache is a read-through services.CatalogStore. Only successful
// reads are cached; misses and failures always go to the wrapped store.
// A broken cache never fails a request.
type CatalogCache struct {
	store  services.CatalogStore
	cache  Cache
	ttl    time.Duration
	prefix string
}

var _ services.CatalogStore = (*CatalogCache)(nil)

func NewCatalogCache(store services.CatalogStore, cache Cache, ttl time.Duration, prefix string) *CatalogCache {
	return &CatalogCache{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (c *CatalogCache) key(op string, parts ...string) string {
	return c.prefix + op + ":" + utils.HashString(strings.Join(parts, "\x00"))
}

// readThrough fills dest from the cache or, on a miss, from load.
func readThrough[T any](ctx context.Context, c *CatalogCache, key string, load func() (T, error)) (T, error) {
	var cached T
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logrus.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
	}

	return value, nil
}

func (c *CatalogCache) ListCategories(ctx context.Context) ([]models.Category, error) {
	return readThrough(ctx, c, c.key("categories"), func() ([]models.Category, error) {
		return c.store.ListCategories(ctx)
	})
}

func (c *CatalogCache) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return readThrough(ctx, c, c.key("category", name), func() (*models.Category, error) {
		return c.store.FindCategoryByName(ctx, name)
	})
}

func (c *CatalogCache) ListProductsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]models.Product, error) {
	return readThrough(ctx, c, c.key("products", subcategoryID.String()), func() ([]models.Product, error) {
		return c.store.ListProductsBySubcategory(ctx, subcategoryID)
	})
}

func (c *CatalogCache) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return readThrough(ctx, c, c.key("product", id.String()), func() (*models.Product, error) {
		return c.store.FindProduct(ctx, id)
	})
}

func (c *CatalogCache) ListRelatedProducts(ctx context.Context, subcategoryID uuid.UUID, exclude *uuid.UUID, limit int) ([]models.Product, error) {
	excluded := ""
	if exclude != nil {
		excluded = exclude.String()
	}

	key := c.key("related", subcategoryID.String(), excluded, fmt.Sprint(limit))
	return readThrough(ctx, c, key, func() ([]models.Product, error) {
		return c.store.ListRelatedProducts(ctx, subcategoryID, exclude, limit)
	})
}

func (c *CatalogCache) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	key := c.key("search", strings.ToLower(query), fmt.Sprint(limit))
	return readThrough(ctx, c, key, func() ([]models.Product, error) {
		return c.store.SearchProducts(ctx, query, limit)
	})
}
