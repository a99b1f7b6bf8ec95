package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kanistore/storefront/internal/appstate"
	"github.com/kanistore/storefront/internal/client"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Fake API ---

type fakeAPI struct {
	mu sync.Mutex

	categories    []client.Category
	subcategories map[string][]client.Subcategory
	products      map[string][]client.Product
	related       map[string][]client.Product
	search        map[string][]client.Product
	err           error

	brokenImages map[string]error
	imageChecks  map[string]int

	calls   map[string]int
	gates   map[string]chan struct{}
	started chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		subcategories: make(map[string][]client.Subcategory),
		products:      make(map[string][]client.Product),
		related:       make(map[string][]client.Product),
		search:        make(map[string][]client.Product),
		brokenImages:  make(map[string]error),
		imageChecks:   make(map[string]int),
		calls:         make(map[string]int),
		gates:         make(map[string]chan struct{}),
		started:       make(chan string, 16),
	}
}

// gate makes the call named key block until the returned channel is closed.
// The blocked call ignores cancellation so that late responses can be
// observed.
func (f *fakeAPI) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeAPI) enter(key string) error {
	f.mu.Lock()
	f.calls[key]++
	gate := f.gates[key]
	delete(f.gates, key)
	err := f.err
	f.mu.Unlock()

	f.started <- key
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]client.Category, error) {
	if err := f.enter("categories"); err != nil {
		return nil, err
	}
	return f.categories, nil
}

func (f *fakeAPI) ListSubcategories(ctx context.Context, name string) ([]client.Subcategory, error) {
	if err := f.enter("subcategories:" + name); err != nil {
		return nil, err
	}
	subs, ok := f.subcategories[name]
	if !ok {
		return nil, fmt.Errorf("list subcategories: %w", client.ErrNotFound)
	}
	return subs, nil
}

func (f *fakeAPI) ListProducts(ctx context.Context, subID string) ([]client.Product, error) {
	if err := f.enter("products:" + subID); err != nil {
		return nil, err
	}
	products, ok := f.products[subID]
	if !ok {
		return nil, fmt.Errorf("list products: %w", client.ErrNotFound)
	}
	return products, nil
}

func (f *fakeAPI) GetProduct(ctx context.Context, id string) (*client.Product, error) {
	if err := f.enter("product:" + id); err != nil {
		return nil, err
	}
	for _, products := range f.products {
		for _, p := range products {
			if p.ID == id {
				found := p
				return &found, nil
			}
		}
	}
	return nil, fmt.Errorf("get product: %w", client.ErrNotFound)
}

func (f *fakeAPI) GetRelatedProducts(ctx context.Context, subID, exclude string) ([]client.Product, error) {
	if err := f.enter("related:" + subID); err != nil {
		return nil, err
	}
	related, ok := f.related[subID]
	if !ok {
		return nil, fmt.Errorf("related: %w", client.ErrNotFound)
	}
	return related, nil
}

func (f *fakeAPI) SearchProducts(ctx context.Context, query string) ([]client.Product, error) {
	if err := f.enter("search:" + query); err != nil {
		return nil, err
	}
	return f.search[query], nil
}

func (f *fakeAPI) CheckImage(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageChecks[ref]++
	return f.brokenImages[ref]
}

// --- Fixtures ---

func groundnutOil() client.Product {
	return client.Product{
		ID:            "p1",
		ProductName:   "Groundnut Oil",
		SubcategoryID: "oils",
		ProductImage:  []string{"p1-front.png", "p1-back.png"},
		Price:         decimal.NewFromInt(130),
		QuantityOptions: []client.QuantityOption{
			{Quantity: "1L", Price: decimal.NewFromInt(120)},
			{Quantity: "5L", Price: decimal.NewFromInt(550)},
		},
	}
}

func gingellyOil() client.Product {
	return client.Product{
		ID:            "p2",
		ProductName:   "Gingelly Oil",
		SubcategoryID: "oils",
		Price:         decimal.NewFromInt(200),
		SellingPrice:  decimal.NewNullDecimal(decimal.NewFromInt(160)),
	}
}

var oils = client.Subcategory{ID: "oils", Name: "Oils", Image: []string{"oils.png"}}

func groceriesAPI() *fakeAPI {
	api := newFakeAPI()
	api.categories = []client.Category{
		{ID: "c1", Name: "Groceries", SubCategories: []client.Subcategory{oils}},
		{ID: "c2", Name: "Offers"},
		{ID: "c3", Name: "Groceries"},
		{ID: "c4", Name: "Snacks"},
	}
	api.subcategories["Groceries"] = []client.Subcategory{oils}
	api.products["oils"] = []client.Product{groundnutOil(), gingellyOil()}
	api.related["oils"] = []client.Product{groundnutOil(), gingellyOil()}
	return api
}

func categoryNames(categories []client.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// --- Tests ---

func TestBrowser_LoadCategories(t *testing.T) {
	b := New(groceriesAPI(), nil, DefaultOptions())

	require.NoError(t, b.LoadCategories(context.Background()))

	view := b.View()
	assert.Equal(t, CategoriesLoaded, view.Phase)
	if diff := cmp.Diff([]string{"Offers", "Groceries", "Snacks"}, categoryNames(view.Categories)); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "c1", view.Categories[1].ID, "first occurrence wins")
}

func TestBrowser_LoadCategoriesWithoutPinning(t *testing.T) {
	b := New(groceriesAPI(), nil, DefaultOptions().WithPinnedCategories())

	require.NoError(t, b.LoadCategories(context.Background()))
	assert.Equal(t, []string{"Groceries", "Offers", "Snacks"}, categoryNames(b.View().Categories))
}

func TestBrowser_UnknownCategory(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)
	ctx := context.Background()

	require.NoError(t, b.SelectCategory(ctx, "Groceries"))
	require.NoError(t, b.SelectCategory(ctx, "Toys"))

	view := b.View()
	assert.Equal(t, SubcategoriesLoaded, view.Phase)
	assert.Equal(t, "Toys", view.SelectedCategory)
	assert.Empty(t, view.Subcategories)
	assert.Empty(t, view.Notifications)
}

func TestBrowser_GroceriesScenario(t *testing.T) {
	api := groceriesAPI()
	b := New(api, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.LoadCategories(ctx))
	require.NoError(t, b.SelectCategory(ctx, "Groceries"))

	view := b.View()
	require.Len(t, view.Subcategories, 1)
	assert.Equal(t, "Oils", view.Subcategories[0].Name)

	require.NoError(t, b.SelectSubcategory(ctx, view.Subcategories[0]))
	view = b.View()
	assert.Equal(t, ProductsLoaded, view.Phase)
	require.Len(t, view.Products, 2)
	assert.False(t, view.NoProducts)

	price, ok := b.Price("p1")
	require.True(t, ok)
	assert.Equal(t, "1L", price.Label)
	assert.Equal(t, "₹120", FormatPrice(price.Current))

	calls := api.callCount()
	require.NoError(t, b.SelectQuantity("p1", "5L"))

	price, _ = b.Price("p1")
	assert.Equal(t, "5L", price.Label)
	assert.Equal(t, "₹550", FormatPrice(price.Current))
	assert.Equal(t, calls, api.callCount(), "selecting a quantity must not issue a request")

	assert.ErrorIs(t, b.SelectQuantity("p1", "10L"), ErrUnknownOption)
	assert.Equal(t, []string{"1L", "5L"}, b.QuantityLabels("p1"))
}

func TestBrowser_StruckThroughPrice(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)
	require.NoError(t, b.SelectSubcategory(context.Background(), oils))

	price, ok := b.Price("p2")
	require.True(t, ok)
	assert.Equal(t, "₹160", FormatPrice(price.Current))
	require.True(t, price.HasStruck())
	assert.Equal(t, "₹200", FormatPrice(price.Struck.Decimal))
}

func TestBrowser_EmptySubcategory(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)

	require.NoError(t, b.SelectSubcategory(context.Background(), client.Subcategory{ID: "rice", Name: "Rice"}))

	view := b.View()
	assert.True(t, view.NoProducts)
	assert.Empty(t, view.Products)
	assert.Empty(t, view.Notifications)
}

func TestBrowser_TransportFailureKeepsState(t *testing.T) {
	api := groceriesAPI()
	b := New(api, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.SelectCategory(ctx, "Groceries"))
	require.NoError(t, b.SelectSubcategory(ctx, oils))

	api.setErr(fmt.Errorf("list: %w", client.ErrUnavailable))
	err := b.SelectCategory(ctx, "Groceries")
	assert.ErrorIs(t, err, client.ErrUnavailable)

	view := b.View()
	assert.Equal(t, ProductsLoaded, view.Phase)
	assert.Len(t, view.Products, 2)
	require.Len(t, view.Notifications, 1)
	assert.Contains(t, view.Notifications[0].Message, "unavailable")

	b.Dismiss(view.Notifications[0].ID)
	assert.Empty(t, b.View().Notifications)
}

func TestBrowser_NotificationUsesServerMessage(t *testing.T) {
	api := groceriesAPI()
	api.setErr(&client.APIError{Status: 500, Code: "INTERNAL", Message: "Something went wrong"})
	b := New(api, nil, nil)

	assert.Error(t, b.LoadCategories(context.Background()))

	view := b.View()
	assert.Equal(t, Idle, view.Phase)
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, "Something went wrong", view.Notifications[0].Message)
}

func TestBrowser_PlaceholderSubstitutedOnce(t *testing.T) {
	b := New(groceriesAPI(), nil, DefaultOptions().WithPlaceholderImage("placeholder.png"))
	require.NoError(t, b.SelectSubcategory(context.Background(), oils))

	view := b.View()
	p1, p2 := view.Products[0], view.Products[1]
	assert.Equal(t, "p1-front.png", b.ImageFor(p1))
	assert.Equal(t, "placeholder.png", b.ImageFor(p2), "no image falls back to placeholder")

	assert.True(t, b.Images().ReportFailure("p1-front.png"))
	assert.False(t, b.Images().ReportFailure("p1-front.png"))
	assert.False(t, b.Images().ReportFailure("placeholder.png"))
	assert.Equal(t, "placeholder.png", b.ImageFor(p1))
	assert.Equal(t, 1, b.Images().Substitutions())
}

func TestBrowser_VerifyImagesSubstitutesOnce(t *testing.T) {
	api := groceriesAPI()
	api.brokenImages["p1-front.png"] = &client.APIError{Status: 404}
	b := New(api, nil, DefaultOptions().WithPlaceholderImage("placeholder.png"))
	ctx := context.Background()

	require.NoError(t, b.SelectSubcategory(ctx, oils))
	p1 := b.View().Products[0]
	assert.Equal(t, "p1-front.png", b.ImageFor(p1))

	assert.Equal(t, 1, b.VerifyImages(ctx))
	assert.Equal(t, "placeholder.png", b.ImageFor(p1))
	assert.Equal(t, 1, b.Images().Substitutions())

	require.NoError(t, b.OpenProduct(ctx, "p1"))
	assert.Equal(t, 0, b.VerifyImages(ctx), "the failed image is not switched twice")
	assert.Equal(t, 1, b.Images().Substitutions())
	assert.Equal(t, "placeholder.png", b.Images().Source(b.View().Detail.ActiveImage))
	assert.Equal(t, "p1-back.png", b.Images().Source("p1-back.png"))

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.imageChecks["p1-front.png"], "each image is checked once")
	assert.Equal(t, 1, api.imageChecks["p1-back.png"])
	assert.Zero(t, api.imageChecks["placeholder.png"])
}

func TestBrowser_SubcategoryImages(t *testing.T) {
	api := groceriesAPI()
	api.subcategories["Groceries"] = []client.Subcategory{oils, {ID: "rice", Name: "Rice"}}
	b := New(api, nil, DefaultOptions().WithPlaceholderImage("placeholder.png"))
	ctx := context.Background()

	require.NoError(t, b.SelectCategory(ctx, "Groceries"))
	subs := b.View().Subcategories
	require.Len(t, subs, 2)
	assert.Equal(t, "oils.png", b.SubcategoryImage(subs[0]))
	assert.Equal(t, "placeholder.png", b.SubcategoryImage(subs[1]))

	api.brokenImages["oils.png"] = fmt.Errorf("head: %w", client.ErrUnavailable)
	assert.Equal(t, 1, b.VerifyImages(ctx))
	assert.Equal(t, "placeholder.png", b.SubcategoryImage(subs[0]))
}

func TestBrowser_VerifyImagesCancelled(t *testing.T) {
	api := groceriesAPI()
	api.brokenImages["p1-front.png"] = fmt.Errorf("head: %w", context.Canceled)
	b := New(api, nil, nil)
	ctx := context.Background()
	require.NoError(t, b.SelectSubcategory(ctx, oils))

	assert.Equal(t, 0, b.VerifyImages(ctx))
	assert.Equal(t, "p1-front.png", b.ImageFor(b.View().Products[0]))

	delete(api.brokenImages, "p1-front.png")
	assert.Equal(t, 0, b.VerifyImages(ctx))

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 2, api.imageChecks["p1-front.png"], "a cancelled check is retried")
}

func TestBrowser_OpenProduct(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)
	ctx := context.Background()
	require.NoError(t, b.SelectSubcategory(ctx, oils))

	require.NoError(t, b.OpenProduct(ctx, "p1"))

	view := b.View()
	assert.Equal(t, ProductOpened, view.Phase)
	require.NotNil(t, view.Detail)
	assert.Equal(t, "p1-front.png", view.Detail.ActiveImage)
	require.Len(t, view.Detail.Related, 1)
	assert.Equal(t, "p2", view.Detail.Related[0].ID)

	require.NoError(t, b.SetActiveImage("p1-back.png"))
	assert.Equal(t, "p1-back.png", b.View().Detail.ActiveImage)
	assert.ErrorIs(t, b.SetActiveImage("elsewhere.png"), ErrUnknownImage)

	b.CloseProduct()
	view = b.View()
	assert.Equal(t, ProductsLoaded, view.Phase)
	assert.Nil(t, view.Detail)
	assert.ErrorIs(t, b.SetActiveImage("p1-back.png"), ErrNoProduct)
}

func TestBrowser_OpenProductWithoutRelated(t *testing.T) {
	api := groceriesAPI()
	delete(api.related, "oils")
	b := New(api, nil, nil)

	require.NoError(t, b.OpenProduct(context.Background(), "p2"))

	view := b.View()
	require.NotNil(t, view.Detail)
	assert.Empty(t, view.Detail.Related)
	assert.Empty(t, view.Notifications)
}

func TestBrowser_OpenMissingProduct(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)

	err := b.OpenProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Nil(t, b.View().Detail)
	assert.Len(t, b.View().Notifications, 1)
}

func TestBrowser_AddToCart(t *testing.T) {
	store := appstate.NewMemoryStore()
	b := New(groceriesAPI(), store, nil)

	assert.Equal(t, 1, b.AddToCart("p1"))
	assert.Equal(t, 2, b.AddToCart("p2"))
	assert.Equal(t, 2, store.Get().CartCount)

	assert.Equal(t, 0, New(groceriesAPI(), nil, nil).AddToCart("p1"))
}

func TestBrowser_StaleResponseDiscarded(t *testing.T) {
	api := groceriesAPI()
	api.products["rice"] = []client.Product{{ID: "r1", ProductName: "Ponni Rice"}}
	b := New(api, nil, nil)
	ctx := context.Background()

	gate := api.gate("products:oils")
	done := make(chan error, 1)
	go func() {
		done <- b.SelectSubcategory(ctx, oils)
	}()
	require.Equal(t, "products:oils", <-api.started)

	require.NoError(t, b.SelectSubcategory(ctx, client.Subcategory{ID: "rice", Name: "Rice"}))
	<-api.started
	close(gate)

	assert.ErrorIs(t, <-done, ErrSuperseded)

	view := b.View()
	require.Len(t, view.Products, 1)
	assert.Equal(t, "r1", view.Products[0].ID)
	assert.Equal(t, "Rice", view.SelectedSubcategory.Name)
}

func TestBrowser_ConcurrentSelections(t *testing.T) {
	b := New(groceriesAPI(), nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.SelectSubcategory(ctx, oils)
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("unexpected error: %v", err)
			}
			_, _ = b.Price("p1")
		}()
	}
	wg.Wait()
	b.Close()

	assert.Len(t, b.View().Products, 2)
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions().
		WithGridColumns(3).
		WithGridColumns(0).
		WithQuantitySelector(false).
		WithPlaceholderImage("").
		WithPinnedCategories("Offers", "Festive")

	want := &Options{
		GridColumns:      3,
		QuantitySelector: false,
		PlaceholderImage: "assets/placeholder.png",
		PinnedCategories: []string{"Offers", "Festive"},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	b := New(groceriesAPI(), nil, opts)
	require.NoError(t, b.SelectSubcategory(context.Background(), oils))
	assert.Nil(t, b.QuantityLabels("p1"), "selector disabled")
}
