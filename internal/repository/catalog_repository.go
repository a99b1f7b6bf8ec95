// internal/repository/catalog_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kanistore/storefront/internal/models"
)

// CatalogRepository reads categories and products from PostgreSQL.
type CatalogRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewCatalogRepository(db *gorm.DB, timeout time.Duration) *CatalogRepository {
	return &CatalogRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *CatalogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func orderedSubcategories(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("SubCategories", orderedSubcategories).
		Order("created_at DESC").
		Find(&categories).Error
	if err != nil {
		return nil, classify("list categories", err)
	}

	return categories, nil
}

func (r *CatalogRepository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("SubCategories", orderedSubcategories).
		Where("name = ?", name).
		First(&category).Error
	if err != nil {
		return nil, classify("find category "+name, err)
	}

	return &category, nil
}

func (r *CatalogRepository) ListProductsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]models.Product, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("subcategory_id = ?", subcategoryID).
		Find(&products).Error
	if err != nil {
		return nil, classify("list products", err)
	}

	return products, nil
}

func (r *CatalogRepository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, classify("find product", err)
	}

	return &product, nil
}

func (r *CatalogRepository) ListRelatedProducts(ctx context.Context, subcategoryID uuid.UUID, exclude *uuid.UUID, limit int) ([]models.Product, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.WithContext(ctx).Where("subcategory_id = ?", subcategoryID)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}

	var products []models.Product
	if err := query.Limit(limit).Find(&products).Error; err != nil {
		return nil, classify("list related products", err)
	}

	return products, nil
}

// SearchProducts matches query case-insensitively as a substring of the
// product name, brand name or description.
func (r *CatalogRepository) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pattern := containsPattern(query)

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("product_name ILIKE ? OR brand_name ILIKE ? OR description ILIKE ?", pattern, pattern, pattern).
		Order("product_name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, classify("search products", err)
	}

	return products, nil
}
