// internal/browser/browser.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/appstate"
	"github.com/kanistore/storefront/internal/client"
)

// Phase is the view the browser currently shows.
type Phase int

const (
	Idle Phase = iota
	CategoriesLoaded
	SubcategoriesLoaded
	ProductsLoaded
	ProductOpened
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CategoriesLoaded:
		return "categories"
	case SubcategoriesLoaded:
		return "subcategories"
	case ProductsLoaded:
		return "products"
	case ProductOpened:
		return "product"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	// ErrSuperseded is returned by a transition whose response arrived after
	// a newer request of the same kind was issued. Its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")

	ErrUnknownOption = errors.New("unknown quantity option")
	ErrUnknownImage  = errors.New("image does not belong to the product")
	ErrNoProduct     = errors.New("no product is open")
)

// Notification is a dismissible message about a failed request.
type Notification struct {
	ID      int
	Message string
	Err     error
}

// ProductDetail is the product page: the product, its related products and
// the image shown large.
type ProductDetail struct {
	Product     client.Product
	Related     []client.Product
	ActiveImage string
}

// View is a snapshot of the browser state for rendering.
type View struct {
	Phase               Phase
	Categories          []client.Category
	SelectedCategory    string
	Subcategories       []client.Subcategory
	SelectedSubcategory *client.Subcategory
	Products            []client.Product
	NoProducts          bool
	Detail              *ProductDetail
	Notifications       []Notification
}

type transition int

const (
	loadCategories transition = iota
	loadSubcategories
	loadProducts
	loadProduct
)

type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

// Browser drives the catalog pages: categories, their subcategories, the
// product grid and the product page. Methods are safe for concurrent use.
// Every transition kind cancels its previous in-flight request, and a
// response that is no longer the latest of its kind is discarded.
type Browser struct {
	api     client.CatalogAPI
	store   appstate.Store
	opts    Options
	images  *ImageTracker
	checker ImageChecker

	mu         sync.Mutex
	view       View
	prevPhase  Phase
	quantities map[string]string
	flights    map[transition]*flight
	nextNoteID int
}

// New returns a Browser over api. When api also implements ImageChecker,
// VerifyImages uses it to find images that cannot be loaded.
func New(api client.CatalogAPI, store appstate.Store, opts *Options) *Browser {
	if opts == nil {
		opts = DefaultOptions()
	}
	b := &Browser{
		api:        api,
		store:      store,
		opts:       *opts,
		images:     NewImageTracker(opts.PlaceholderImage),
		quantities: make(map[string]string),
		flights:    make(map[transition]*flight),
	}
	if checker, ok := api.(ImageChecker); ok {
		b.checker = checker
	}
	return b
}

func (b *Browser) Options() Options {
	return b.opts
}

func (b *Browser) Images() *ImageTracker {
	return b.images
}

// View returns a copy of the current state.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := b.view
	v.Categories = append([]client.Category(nil), b.view.Categories...)
	v.Subcategories = append([]client.Subcategory(nil), b.view.Subcategories...)
	v.Products = append([]client.Product(nil), b.view.Products...)
	v.Notifications = append([]Notification(nil), b.view.Notifications...)
	if b.view.SelectedSubcategory != nil {
		sub := *b.view.SelectedSubcategory
		v.SelectedSubcategory = &sub
	}
	if b.view.Detail != nil {
		detail := *b.view.Detail
		detail.Related = append([]client.Product(nil), b.view.Detail.Related...)
		v.Detail = &detail
	}
	return v
}

// LoadCategories fetches the category list, removes duplicate names
// (first occurrence wins) and moves pinned categories to the front.
func (b *Browser) LoadCategories(ctx context.Context) error {
	ctx, gen := b.begin(ctx, loadCategories)
	categories, err := b.api.ListCategories(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finish(loadCategories, gen) {
		return ErrSuperseded
	}

	if err != nil && !errors.Is(err, client.ErrNotFound) {
		return b.notify("categories", err)
	}

	b.view.Categories = pinCategories(dedupeCategories(categories), b.opts.PinnedCategories)
	if b.view.Phase == Idle {
		b.view.Phase = CategoriesLoaded
	}
	return nil
}

// SelectCategory replaces the subcategory list with the subcategories of
// name. An unknown category shows zero subcategories without a
// notification.
func (b *Browser) SelectCategory(ctx context.Context, name string) error {
	ctx, gen := b.begin(ctx, loadSubcategories)
	subcategories, err := b.api.ListSubcategories(ctx, name)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finish(loadSubcategories, gen) {
		return ErrSuperseded
	}

	switch {
	case errors.Is(err, client.ErrNotFound):
		subcategories = []client.Subcategory{}
	case err != nil:
		return b.notify("subcategories", err)
	}

	b.invalidate(loadProducts)
	b.view.SelectedCategory = name
	b.view.Subcategories = subcategories
	b.view.SelectedSubcategory = nil
	b.view.Products = nil
	b.view.NoProducts = false
	b.view.Detail = nil
	b.view.Phase = SubcategoriesLoaded
	return nil
}

// SelectSubcategory loads the product grid for sub. A subcategory without
// products shows the "no products" state without a notification.
func (b *Browser) SelectSubcategory(ctx context.Context, sub client.Subcategory) error {
	ctx, gen := b.begin(ctx, loadProducts)
	products, err := b.api.ListProducts(ctx, sub.ID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finish(loadProducts, gen) {
		return ErrSuperseded
	}

	switch {
	case errors.Is(err, client.ErrNotFound):
		products = []client.Product{}
	case err != nil:
		return b.notify("products", err)
	}

	b.view.SelectedSubcategory = &sub
	b.view.Products = products
	b.view.NoProducts = len(products) == 0
	b.view.Detail = nil
	b.view.Phase = ProductsLoaded
	return nil
}

// OpenProduct shows the product page for productID with up to a handful of
// related products from the same subcategory.
func (b *Browser) OpenProduct(ctx context.Context, productID string) error {
	ctx, gen := b.begin(ctx, loadProduct)

	product, err := b.api.GetProduct(ctx, productID)
	var related []client.Product
	if err == nil {
		related = b.relatedProducts(ctx, product)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finish(loadProduct, gen) {
		return ErrSuperseded
	}
	if err != nil {
		return b.notify("product", err)
	}

	if b.view.Phase != ProductOpened {
		b.prevPhase = b.view.Phase
	}
	b.view.Detail = &ProductDetail{
		Product:     *product,
		Related:     related,
		ActiveImage: product.FirstImage(),
	}
	b.view.Phase = ProductOpened
	return nil
}

func (b *Browser) relatedProducts(ctx context.Context, product *client.Product) []client.Product {
	if product.SubcategoryID == "" {
		return []client.Product{}
	}

	related, err := b.api.GetRelatedProducts(ctx, product.SubcategoryID, product.ID)
	if err != nil {
		if !errors.Is(err, client.ErrNotFound) && !client.IsCancelled(err) {
			log.WithError(err).WithField("product", product.ID).Warn("Failed to load related products")
		}
		return []client.Product{}
	}

	out := make([]client.Product, 0, len(related))
	for _, p := range related {
		if p.ID != product.ID {
			out = append(out, p)
		}
	}
	return out
}

// CloseProduct leaves the product page and returns to the previous view.
func (b *Browser) CloseProduct() {
	b.mu.Lock()
	phase := b.view.Phase
	b.mu.Unlock()

	if phase == ProductOpened {
		b.Back()
	}
}

// Back returns to the previous level: product page to the grid it was
// opened from, products to subcategories, subcategories to categories.
func (b *Browser) Back() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.view.Phase {
	case ProductOpened:
		b.invalidate(loadProduct)
		b.view.Detail = nil
		b.view.Phase = b.prevPhase
	case ProductsLoaded:
		b.invalidate(loadProducts)
		b.view.SelectedSubcategory = nil
		b.view.Products = nil
		b.view.NoProducts = false
		b.view.Phase = SubcategoriesLoaded
	case SubcategoriesLoaded:
		b.invalidate(loadSubcategories)
		b.invalidate(loadProducts)
		b.view.SelectedCategory = ""
		b.view.Subcategories = nil
		b.view.Phase = CategoriesLoaded
	}
}

// SetActiveImage switches the large image on the product page.
func (b *Browser) SetActiveImage(ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view.Detail == nil {
		return ErrNoProduct
	}
	for _, img := range b.view.Detail.Product.ProductImage {
		if img == ref {
			b.view.Detail.ActiveImage = ref
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownImage, ref)
}

// SelectQuantity picks a quantity option of a visible product. It only
// changes local state.
func (b *Browser) SelectQuantity(productID, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	product, ok := b.findProduct(productID)
	if !ok {
		return fmt.Errorf("%w: product %s is not shown", ErrUnknownOption, productID)
	}
	for _, o := range product.QuantityOptions {
		if o.Quantity == label {
			b.quantities[productID] = label
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, label)
}

// Price returns the display price of a visible product.
func (b *Browser) Price(productID string) (PriceDisplay, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	product, ok := b.findProduct(productID)
	if !ok {
		return PriceDisplay{}, false
	}
	return PriceOf(product, b.quantities[productID]), true
}

// QuantityLabels returns the selectable options of a visible product, or
// nil when the quantity selector is disabled.
func (b *Browser) QuantityLabels(productID string) []string {
	if !b.opts.QuantitySelector {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	product, ok := b.findProduct(productID)
	if !ok {
		return nil
	}
	return quantityLabels(product)
}

// ImageFor returns the image source for a product tile.
func (b *Browser) ImageFor(p client.Product) string {
	return b.images.Source(p.FirstImage())
}

// SubcategoryImage returns the image source for a subcategory tile.
func (b *Browser) SubcategoryImage(sub client.Subcategory) string {
	return b.images.Source(sub.FirstImage())
}

// VerifyImages checks the images the current page shows and switches the
// ones that cannot be loaded to the placeholder. It returns how many were
// switched.
func (b *Browser) VerifyImages(ctx context.Context) int {
	if b.checker == nil {
		return 0
	}
	return b.images.Verify(ctx, b.checker, b.pageImages())
}

func (b *Browser) pageImages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var refs []string
	switch b.view.Phase {
	case SubcategoriesLoaded:
		for _, sub := range b.view.Subcategories {
			refs = append(refs, sub.FirstImage())
		}
	case ProductsLoaded:
		for _, p := range b.view.Products {
			refs = append(refs, p.FirstImage())
		}
	case ProductOpened:
		if b.view.Detail != nil {
			refs = append(refs, b.view.Detail.Product.ProductImage...)
			for _, p := range b.view.Detail.Related {
				refs = append(refs, p.FirstImage())
			}
		}
	}
	return refs
}

// AddToCart bumps the cart counter in the application state by one and
// returns the new count.
func (b *Browser) AddToCart(productID string) int {
	if b.store == nil {
		return 0
	}
	b.store.AddToCart(productID, 1)
	return b.store.Get().CartCount
}

// Dismiss removes a notification.
func (b *Browser) Dismiss(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.view.Notifications {
		if n.ID == id {
			b.view.Notifications = append(b.view.Notifications[:i], b.view.Notifications[i+1:]...)
			return
		}
	}
}

// Close cancels every in-flight request.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind := range b.flights {
		b.invalidate(kind)
	}
}

// findProduct must be called with b.mu held.
func (b *Browser) findProduct(productID string) (client.Product, bool) {
	if b.view.Detail != nil && b.view.Detail.Product.ID == productID {
		return b.view.Detail.Product, true
	}
	for _, p := range b.view.Products {
		if p.ID == productID {
			return p, true
		}
	}
	if b.view.Detail != nil {
		for _, p := range b.view.Detail.Related {
			if p.ID == productID {
				return p, true
			}
		}
	}
	return client.Product{}, false
}

// begin starts a request of the given kind, cancelling the previous one.
func (b *Browser) begin(ctx context.Context, kind transition) (context.Context, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := b.flightFor(kind)
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	ctx, f.cancel = context.WithCancel(ctx)
	return ctx, f.gen
}

// finish reports whether gen is still the latest request of its kind and
// releases its context. Must be called with b.mu held.
func (b *Browser) finish(kind transition, gen uint64) bool {
	f := b.flightFor(kind)
	if f.gen != gen {
		return false
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	return true
}

// invalidate cancels the in-flight request of kind so its response is
// discarded. Must be called with b.mu held.
func (b *Browser) invalidate(kind transition) {
	f := b.flightFor(kind)
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}

func (b *Browser) flightFor(kind transition) *flight {
	f, ok := b.flights[kind]
	if !ok {
		f = &flight{}
		b.flights[kind] = f
	}
	return f
}

// notify records a failure and returns it. Must be called with b.mu held.
func (b *Browser) notify(what string, err error) error {
	if client.IsCancelled(err) {
		return err
	}

	b.nextNoteID++
	b.view.Notifications = append(b.view.Notifications, Notification{
		ID:      b.nextNoteID,
		Message: notificationMessage(what, err),
		Err:     err,
	})
	log.WithError(err).WithField("request", what).Warn("Catalog request failed")
	return err
}

func notificationMessage(what string, err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Sprintf("Could not load %s: the store is unavailable, please try again", what)
	default:
		return fmt.Sprintf("Could not load %s", what)
	}
}

func dedupeCategories(categories []client.Category) []client.Category {
	seen := make(map[string]struct{}, len(categories))
	out := make([]client.Category, 0, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}

// pinCategories moves pinned categories to the front in pinned order and
// keeps the relative order of the rest.
func pinCategories(categories []client.Category, pinned []string) []client.Category {
	if len(pinned) == 0 {
		return categories
	}
	rank := make(map[string]int, len(pinned))
	for i, name := range pinned {
		if _, ok := rank[name]; !ok {
			rank[name] = i
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		ri, iPinned := rank[categories[i].Name]
		rj, jPinned := rank[categories[j].Name]
		switch {
		case iPinned && jPinned:
			return ri < rj
		default:
			return iPinned && !jPinned
		}
	})
	return categories
}
