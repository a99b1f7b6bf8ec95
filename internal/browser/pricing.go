// internal/browser/pricing.go
package browser

import (
	"github.com/shopspring/decimal"

	"github.com/kanistore/storefront/internal/client"
)

// PriceDisplay is what a product tile shows for its price.
type PriceDisplay struct {
	// Label is the selected quantity option, empty for flat-priced products.
	Label   string
	Current decimal.Decimal
	// Struck is the original price shown struck through next to Current.
	Struck decimal.NullDecimal
}

func (d PriceDisplay) HasStruck() bool {
	return d.Struck.Valid
}

// PriceOf computes the display price of p. With quantity options the price
// of the selected option is used, falling back to the first option when
// selected is empty or unknown. Without options the selling price is shown,
// with the base price struck through when both exist and differ.
func PriceOf(p client.Product, selected string) PriceDisplay {
	if len(p.QuantityOptions) > 0 {
		option := p.QuantityOptions[0]
		for _, o := range p.QuantityOptions {
			if o.Quantity == selected {
				option = o
				break
			}
		}
		return PriceDisplay{Label: option.Quantity, Current: option.Price}
	}

	if !p.SellingPrice.Valid {
		return PriceDisplay{Current: p.Price}
	}

	display := PriceDisplay{Current: p.SellingPrice.Decimal}
	if !p.Price.IsZero() && !p.Price.Equal(p.SellingPrice.Decimal) {
		display.Struck = decimal.NewNullDecimal(p.Price)
	}
	return display
}

// FormatPrice renders an amount in rupees, dropping the paise when whole.
func FormatPrice(d decimal.Decimal) string {
	if d.IsInteger() {
		return "₹" + d.String()
	}
	return "₹" + d.StringFixed(2)
}

func quantityLabels(p client.Product) []string {
	labels := make([]string, 0, len(p.QuantityOptions))
	for _, o := range p.QuantityOptions {
		labels = append(labels, o.Quantity)
	}
	return labels
}
