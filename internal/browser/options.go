// internal/browser/options.go
package browser

import "github.com/kanistore/storefront/internal/clientconfig"

// Options controls how the catalog is presented. Build it with
// DefaultOptions and the With... methods.
type Options struct {
	GridColumns      int
	QuantitySelector bool
	PlaceholderImage string
	PinnedCategories []string
}

func DefaultOptions() *Options {
	return &Options{
		GridColumns:      4,
		QuantitySelector: true,
		PlaceholderImage: "assets/placeholder.png",
		PinnedCategories: []string{"Offers"},
	}
}

// OptionsFromConfig maps the client UI configuration onto Options.
func OptionsFromConfig(cfg clientconfig.UIConfig) *Options {
	return DefaultOptions().
		WithGridColumns(cfg.GridColumns).
		WithQuantitySelector(cfg.QuantitySelector).
		WithPlaceholderImage(cfg.PlaceholderImage).
		WithPinnedCategories(cfg.PinnedCategories...)
}

func (o *Options) WithGridColumns(n int) *Options {
	if n > 0 {
		o.GridColumns = n
	}
	return o
}

func (o *Options) WithQuantitySelector(enabled bool) *Options {
	o.QuantitySelector = enabled
	return o
}

func (o *Options) WithPlaceholderImage(ref string) *Options {
	if ref != "" {
		o.PlaceholderImage = ref
	}
	return o
}

// WithPinnedCategories replaces the pinned list. No arguments means no
// category is pinned.
func (o *Options) WithPinnedCategories(names ...string) *Options {
	o.PinnedCategories = append([]string(nil), names...)
	return o
}
