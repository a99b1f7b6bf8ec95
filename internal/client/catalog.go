// internal/client/catalog.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"github.com/kanistore/storefront/internal/clientconfig"
)

// CatalogAPI is the read side of the catalog HTTP API.
type CatalogAPI interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListSubcategories(ctx context.Context, categoryName string) ([]Subcategory, error)
	ListProducts(ctx context.Context, subcategoryID string) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	GetRelatedProducts(ctx context.Context, subcategoryID, excludeProductID string) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
}

// envelope accepts every response shape the API produces. List payloads
// arrive under "data" or "products"; payload() hides the difference.
type envelope struct {
	Message  string          `json:"message"`
	Success  *bool           `json:"success"`
	Error    bool            `json:"error"`
	Code     string          `json:"code"`
	Data     json.RawMessage `json:"data"`
	Products json.RawMessage `json:"products"`
}

func (e *envelope) payload() json.RawMessage {
	if isPresent(e.Data) {
		return e.Data
	}
	if isPresent(e.Products) {
		return e.Products
	}
	return nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

type CatalogClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	validate   *validator.Validate
}

var _ CatalogAPI = (*CatalogClient)(nil)

func NewCatalogClient(cfg clientconfig.APIConfig) *CatalogClient {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Language", cfg.Language)

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &CatalogClient{
		rl:         rl,
		httpClient: httpClient,
		validate:   newValidator(),
	}
}

func (c *CatalogClient) Close() error {
	return c.httpClient.Close()
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			f, _ := d.Float64()
			return f
		case decimal.NullDecimal:
			if !d.Valid {
				return 0.0
			}
			f, _ := d.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
	return v
}

func (c *CatalogClient) ListCategories(ctx context.Context) ([]Category, error) {
	raw, err := c.get(ctx, "/api/Category", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return decodeList[Category](c, raw)
}

func (c *CatalogClient) ListSubcategories(ctx context.Context, categoryName string) ([]Subcategory, error) {
	raw, err := c.get(ctx, "/api/category/{categoryName}/subcategories",
		map[string]string{"categoryName": categoryName}, nil)
	if err != nil {
		return nil, fmt.Errorf("list subcategories of %q: %w", categoryName, err)
	}
	return decodeList[Subcategory](c, raw)
}

func (c *CatalogClient) ListProducts(ctx context.Context, subcategoryID string) ([]Product, error) {
	raw, err := c.get(ctx, "/api/subcategories/{subcategoryId}/products",
		map[string]string{"subcategoryId": subcategoryID}, nil)
	if err != nil {
		return nil, fmt.Errorf("list products of %s: %w", subcategoryID, err)
	}
	return decodeList[Product](c, raw)
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	raw, err := c.get(ctx, "/api/product-details/{productId}",
		map[string]string{"productId": productID}, nil)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	var product Product
	if err := c.decode(raw, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CatalogClient) GetRelatedProducts(ctx context.Context, subcategoryID, excludeProductID string) ([]Product, error) {
	var query map[string]string
	if excludeProductID != "" {
		query = map[string]string{"exclude": excludeProductID}
	}

	raw, err := c.get(ctx, "/api/related/{subcategoryId}",
		map[string]string{"subcategoryId": subcategoryID}, query)
	if err != nil {
		return nil, fmt.Errorf("related products of %s: %w", subcategoryID, err)
	}
	return decodeList[Product](c, raw)
}

func (c *CatalogClient) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	raw, err := c.get(ctx, "/api/search", nil, map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return decodeList[Product](c, raw)
}

// CheckImage reports whether the image at ref can be fetched. Relative refs
// resolve against the API base URL.
func (c *CatalogClient) CheckImage(ctx context.Context, ref string) error {
	c.rl.Take()

	resp, err := c.httpClient.R().SetContext(ctx).Head(ref)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("check image %s: %w: %v", ref, ErrUnavailable, err)
	}

	if resp.IsError() {
		return fmt.Errorf("check image %s: %w", ref, newAPIError(resp.StatusCode(), "", ""))
	}
	return nil
}

func (c *CatalogClient) get(ctx context.Context, path string, pathParams, query map[string]string) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx)
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	return c.execute(ctx, req, http.MethodGet, path)
}

func (c *CatalogClient) execute(ctx context.Context, req *resty.Request, method, path string) (json.RawMessage, error) {
	c.rl.Take()

	resp, err := req.Execute(method, path)
	if err != nil {
		// Check if this is a context cancellation from the caller
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal([]byte(resp.String()), &env)

	if resp.IsError() {
		log.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode(),
			"code":   env.Code,
		}).Debug("Catalog API returned an error")
		return nil, newAPIError(resp.StatusCode(), env.Code, env.Message)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrInternal, decodeErr)
	}

	if env.Success != nil && !*env.Success {
		return nil, newAPIError(resp.StatusCode(), env.Code, env.Message)
	}

	return env.payload(), nil
}

func (c *CatalogClient) decode(raw json.RawMessage, dest interface{}) error {
	if raw == nil {
		return fmt.Errorf("%w: response has no payload", ErrInternal)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", ErrInternal, err)
	}

	if err := c.validate.Struct(dest); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", ErrInternal, err)
	}

	return nil
}

func decodeList[T any](c *CatalogClient, raw json.RawMessage) ([]T, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: response has no payload", ErrInternal)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrInternal, err)
	}

	for i := range items {
		if err := c.validate.Struct(&items[i]); err != nil {
			return nil, fmt.Errorf("%w: invalid item %d: %v", ErrInternal, i, err)
		}
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

// IsCancelled reports whether err came from a cancelled or superseded request.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
