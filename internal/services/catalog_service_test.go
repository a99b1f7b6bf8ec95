package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanistore/storefront/internal/config"
	"github.com/kanistore/storefront/internal/models"
)

type fakeCatalogStore struct {
	categories []models.Category
	products   []models.Product
	err        error

	searchCalls  int
	lastLimit    int
	lastExclude  *uuid.UUID
	lastSearched string
}

func (f *fakeCatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeCatalogStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.categories {
		if f.categories[i].Name == name {
			category := f.categories[i]
			return &category, nil
		}
	}
	return nil, fmt.Errorf("find category %s: %w", name, models.ErrNotFound)
}

func (f *fakeCatalogStore) ListProductsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		if p.SubcategoryID == subcategoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogStore) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("find product: %w", models.ErrNotFound)
}

func (f *fakeCatalogStore) ListRelatedProducts(ctx context.Context, subcategoryID uuid.UUID, exclude *uuid.UUID, limit int) ([]models.Product, error) {
	f.lastLimit = limit
	f.lastExclude = exclude
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		if p.SubcategoryID != subcategoryID || (exclude != nil && p.ID == *exclude) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogStore) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	f.searchCalls++
	f.lastSearched = query
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func newTestCatalogService(store CatalogStore) *CatalogService {
	images, _ := NewImageService(config.AWSConfig{CloudFrontURL: "https://cdn.example.com"})
	return NewCatalogService(store, images, config.CatalogConfig{
		RelatedLimit:    4,
		MaxRelatedLimit: 20,
		SearchLimit:     50,
		MaxQueryLength:  100,
	})
}

func product(sub uuid.UUID, name string) models.Product {
	p := models.Product{
		ProductName:   name,
		SubcategoryID: sub,
		ProductImage:  pq.StringArray{"products/" + name + ".png"},
		Price:         decimal.NewFromInt(100),
	}
	p.ID = uuid.New()
	return p
}

func TestCatalogService_ListCategories(t *testing.T) {
	store := &fakeCatalogStore{}
	svc := newTestCatalogService(store)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	store.categories = []models.Category{{
		Name: "Groceries",
		SubCategories: []models.Subcategory{
			{Name: "Oils", Image: pq.StringArray{"oils.png", "https://img.example.com/x.png"}},
		},
	}}

	categories, err = svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, pq.StringArray{"https://cdn.example.com/oils.png", "https://img.example.com/x.png"},
		categories[0].SubCategories[0].Image)
}

func TestCatalogService_ListSubcategories(t *testing.T) {
	store := &fakeCatalogStore{categories: []models.Category{{Name: "Groceries"}}}
	svc := newTestCatalogService(store)

	subs, err := svc.ListSubcategories(context.Background(), "Groceries")
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)

	_, err = svc.ListSubcategories(context.Background(), "Toys")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListSubcategories(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_ListProducts(t *testing.T) {
	oils := uuid.New()
	store := &fakeCatalogStore{products: []models.Product{product(oils, "sunflower")}}
	svc := newTestCatalogService(store)

	testCases := []struct {
		name     string
		id       string
		expected error
		count    int
	}{
		{name: "match", id: oils.String(), count: 1},
		{name: "no products", id: uuid.NewString(), expected: ErrNotFound},
		{name: "malformed id", id: "not-a-uuid", expected: ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			products, err := svc.ListProducts(context.Background(), tc.id)
			if tc.expected != nil {
				assert.ErrorIs(t, err, tc.expected)
				return
			}
			require.NoError(t, err)
			assert.Len(t, products, tc.count)
			assert.Equal(t, "https://cdn.example.com/products/sunflower.png", products[0].ProductImage[0])
		})
	}
}

func TestCatalogService_GetProduct(t *testing.T) {
	p := product(uuid.New(), "ghee")
	svc := newTestCatalogService(&fakeCatalogStore{products: []models.Product{p}})

	got, err := svc.GetProduct(context.Background(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ghee", got.ProductName)

	_, err = svc.GetProduct(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProduct(context.Background(), "123")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_GetRelatedProducts(t *testing.T) {
	sub := uuid.New()
	store := &fakeCatalogStore{}
	for i := 0; i < 6; i++ {
		store.products = append(store.products, product(sub, fmt.Sprintf("p%d", i)))
	}
	svc := newTestCatalogService(store)
	ctx := context.Background()

	related, err := svc.GetRelatedProducts(ctx, sub.String(), RelatedOptions{})
	require.NoError(t, err)
	assert.Len(t, related, 4)
	assert.Equal(t, 4, store.lastLimit)
	assert.Nil(t, store.lastExclude)

	related, err = svc.GetRelatedProducts(ctx, sub.String(), RelatedOptions{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, store.lastLimit)
	assert.Len(t, related, 6)

	excluded := store.products[0].ID
	related, err = svc.GetRelatedProducts(ctx, sub.String(), RelatedOptions{Exclude: excluded.String()})
	require.NoError(t, err)
	require.NotNil(t, store.lastExclude)
	assert.Equal(t, excluded, *store.lastExclude)
	for _, p := range related {
		assert.NotEqual(t, excluded, p.ID)
	}

	_, err = svc.GetRelatedProducts(ctx, uuid.NewString(), RelatedOptions{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetRelatedProducts(ctx, sub.String(), RelatedOptions{Exclude: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	store := &fakeCatalogStore{}
	svc := newTestCatalogService(store)
	ctx := context.Background()

	products, err := svc.SearchProducts(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 0, store.searchCalls, "blank query must not reach the store")

	products, err = svc.SearchProducts(ctx, "  soap ")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Equal(t, "soap", store.lastSearched)

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.SearchProducts(ctx, string(long))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_StoreFailures(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "unavailable", err: fmt.Errorf("list: %w", models.ErrUnavailable), expected: ErrUnavailable},
		{name: "internal", err: fmt.Errorf("list: %w", models.ErrInternal), expected: ErrInternal},
		{name: "unclassified", err: errors.New("boom"), expected: ErrInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestCatalogService(&fakeCatalogStore{err: tc.err})

			_, err := svc.ListCategories(context.Background())
			assert.ErrorIs(t, err, tc.expected)

			_, err = svc.SearchProducts(context.Background(), "oil")
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
