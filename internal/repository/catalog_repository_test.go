package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kanistore/storefront/internal/models"
)

// sqlRecorder is a gorm logger that keeps every statement with its
// arguments inlined.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.statements, "no statement was built")
	return r.statements[len(r.statements)-1]
}

func (r *sqlRecorder) first(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.statements, "no statement was built")
	return r.statements[0]
}

// dryRunDB returns a postgres gorm handle that builds statements without
// connecting to a server.
func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=kani dbname=kanistore sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return db, rec
}

func TestContainsPattern(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "plain text", query: "soap", expected: "%soap%"},
		{name: "percent is literal", query: "50% off", expected: `%50\% off%`},
		{name: "underscore is literal", query: "a_b", expected: `%a\_b%`},
		{name: "backslash is literal", query: `c:\x`, expected: `%c:\\x%`},
		{name: "mixed", query: `_%\`, expected: `%\_\%\\%`},
		{name: "empty", query: "", expected: "%%"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, containsPattern(tc.query))
		})
	}
}

func TestCatalogRepository_Queries(t *testing.T) {
	subcategoryID := uuid.MustParse("6f1c2a8e-1b2d-4c3e-9f40-5a6b7c8d9e01")
	productID := uuid.MustParse("0b7e4d21-8c3a-4f5b-a6d7-e8f901234567")

	testCases := []struct {
		name        string
		run         func(ctx context.Context, repo *CatalogRepository) error
		contains    []string
		notContains []string
	}{
		{
			name: "categories newest first",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.ListCategories(ctx)
				return err
			},
			contains: []string{`FROM "categories"`, "ORDER BY created_at DESC", `"categories"."deleted_at" IS NULL`},
		},
		{
			name: "category by exact name",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.FindCategoryByName(ctx, "Groceries")
				return err
			},
			contains:    []string{`FROM "categories"`, "name = 'Groceries'", "LIMIT 1"},
			notContains: []string{"ILIKE"},
		},
		{
			name: "products of a subcategory",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.ListProductsBySubcategory(ctx, subcategoryID)
				return err
			},
			contains:    []string{`FROM "products"`, "subcategory_id = '" + subcategoryID.String() + "'"},
			notContains: []string{"LIMIT"},
		},
		{
			name: "product by id",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.FindProduct(ctx, productID)
				return err
			},
			contains: []string{`FROM "products"`, "id = '" + productID.String() + "'", "LIMIT 1"},
		},
		{
			name: "related products exclude the open product",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.ListRelatedProducts(ctx, subcategoryID, &productID, 4)
				return err
			},
			contains: []string{
				"subcategory_id = '" + subcategoryID.String() + "'",
				"id <> '" + productID.String() + "'",
				"LIMIT 4",
			},
		},
		{
			name: "related products without exclude",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.ListRelatedProducts(ctx, subcategoryID, nil, 20)
				return err
			},
			contains:    []string{"subcategory_id = '" + subcategoryID.String() + "'", "LIMIT 20"},
			notContains: []string{"<>"},
		},
		{
			name: "search over name, brand and description",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.SearchProducts(ctx, "oil", 50)
				return err
			},
			contains: []string{
				"product_name ILIKE '%oil%' OR brand_name ILIKE '%oil%' OR description ILIKE '%oil%'",
				"ORDER BY product_name ASC",
				"LIMIT 50",
			},
		},
		{
			name: "search escapes wildcards",
			run: func(ctx context.Context, repo *CatalogRepository) error {
				_, err := repo.SearchProducts(ctx, "100%", 50)
				return err
			},
			contains: []string{`product_name ILIKE '%100\%%'`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, rec := dryRunDB(t)
			repo := NewCatalogRepository(db, time.Second)

			require.NoError(t, tc.run(context.Background(), repo))

			sql := rec.first(t)
			for _, fragment := range tc.contains {
				assert.Contains(t, sql, fragment)
			}
			for _, fragment := range tc.notContains {
				assert.NotContains(t, sql, fragment)
			}
		})
	}
}

func TestOrderedSubcategories(t *testing.T) {
	db, rec := dryRunDB(t)

	var subcategories []models.Subcategory
	require.NoError(t, db.Scopes(orderedSubcategories).Find(&subcategories).Error)

	sql := rec.last(t)
	assert.Contains(t, sql, `FROM "subcategories"`)
	assert.Contains(t, sql, "ORDER BY position ASC")
}
