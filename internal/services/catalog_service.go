// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/config"
	"github.com/kanistore/storefront/internal/models"
)

// CatalogStore is the read side of the catalog. Implemented by
// repository.CatalogRepository and by the cache decorator wrapping it.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListProductsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]models.Product, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListRelatedProducts(ctx context.Context, subcategoryID uuid.UUID, exclude *uuid.UUID, limit int) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error)
}

type CatalogService struct {
	store  CatalogStore
	images *ImageService
	cfg    config.CatalogConfig
}

type RelatedOptions struct {
	Limit   int
	Exclude string
}

func NewCatalogService(store CatalogStore, images *ImageService, cfg config.CatalogConfig) *CatalogService {
	return &CatalogService{
		store:  store,
		images: images,
		cfg:    cfg,
	}
}

// ListCategories returns every category, newest first. An empty catalog is not an error.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, s.fail("list categories", err)
	}

	if categories == nil {
		categories = []models.Category{}
	}
	for i := range categories {
		categories[i].SubCategories = s.resolveSubcategories(categories[i].SubCategories)
	}

	return categories, nil
}

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryName string) ([]models.Subcategory, error) {
	if strings.TrimSpace(categoryName) == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrInvalidInput)
	}

	category, err := s.store.FindCategoryByName(ctx, categoryName)
	if err != nil {
		return nil, s.fail("list subcategories", err)
	}

	return s.resolveSubcategories(category.SubCategories), nil
}

func (s *CatalogService) ListProducts(ctx context.Context, subcategoryID string) ([]models.Product, error) {
	id, err := parseID("subcategory", subcategoryID)
	if err != nil {
		return nil, err
	}

	products, err := s.store.ListProductsBySubcategory(ctx, id)
	if err != nil {
		return nil, s.fail("list products", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products in subcategory %s: %w", id, ErrNotFound)
	}

	return s.resolveProducts(products), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	id, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.FindProduct(ctx, id)
	if err != nil {
		return nil, s.fail("get product", err)
	}

	product.ProductImage = s.images.ResolveAll(product.ProductImage)
	return product, nil
}

// GetRelatedProducts returns up to opts.Limit products sharing the subcategory,
// in store order. A zero limit means the configured default.
func (s *CatalogService) GetRelatedProducts(ctx context.Context, subcategoryID string, opts RelatedOptions) ([]models.Product, error) {
	id, err := parseID("subcategory", subcategoryID)
	if err != nil {
		return nil, err
	}

	var exclude *uuid.UUID
	if opts.Exclude != "" {
		excludeID, err := parseID("product", opts.Exclude)
		if err != nil {
			return nil, err
		}
		exclude = &excludeID
	}

	products, err := s.store.ListRelatedProducts(ctx, id, exclude, s.relatedLimit(opts.Limit))
	if err != nil {
		return nil, s.fail("related products", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no related products in subcategory %s: %w", id, ErrNotFound)
	}

	return s.resolveProducts(products), nil
}

// SearchProducts never reports NOT_FOUND; no match is an empty list.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	if s.cfg.MaxQueryLength > 0 && utf8.RuneCountInString(query) > s.cfg.MaxQueryLength {
		return nil, fmt.Errorf("query longer than %d characters: %w", s.cfg.MaxQueryLength, ErrInvalidInput)
	}

	products, err := s.store.SearchProducts(ctx, query, s.cfg.SearchLimit)
	if err != nil {
		return nil, s.fail("search products", err)
	}
	if products == nil {
		return []models.Product{}, nil
	}

	return s.resolveProducts(products), nil
}

func (s *CatalogService) relatedLimit(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.RelatedLimit
	case s.cfg.MaxRelatedLimit > 0 && requested > s.cfg.MaxRelatedLimit:
		return s.cfg.MaxRelatedLimit
	default:
		return requested
	}
}

func (s *CatalogService) resolveSubcategories(subs []models.Subcategory) []models.Subcategory {
	if subs == nil {
		return []models.Subcategory{}
	}
	for i := range subs {
		subs[i].Image = s.images.ResolveAll(subs[i].Image)
	}
	return subs
}

func (s *CatalogService) resolveProducts(products []models.Product) []models.Product {
	for i := range products {
		products[i].ProductImage = s.images.ResolveAll(products[i].ProductImage)
	}
	return products
}

// fail logs store failures that are not plain misses and passes the error on.
func (s *CatalogService) fail(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}

	entry := logrus.WithError(err).WithField("op", op)
	if errors.Is(err, ErrUnavailable) {
		entry.Warn("Catalog store unavailable")
	} else {
		entry.Error("Catalog store failure")
	}

	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInternal) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrInternal, err)
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, raw, ErrInvalidInput)
	}
	return id, nil
}
