// internal/client/types.go
package client

import (
	"github.com/shopspring/decimal"
)

// Category, Subcategory and Product are the client-side view of the catalog.
// Responses are checked against the validate tags before they reach the UI.

type Category struct {
	ID            string        `json:"_id" validate:"required"`
	Name          string        `json:"name" validate:"required"`
	SubCategories []Subcategory `json:"subCategories" validate:"dive"`
}

type Subcategory struct {
	ID    string   `json:"_id" validate:"required"`
	Name  string   `json:"name" validate:"required"`
	Image []string `json:"image"`
}

type QuantityOption struct {
	Quantity string          `json:"quantity" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

type Product struct {
	ID              string              `json:"_id" validate:"required"`
	ProductName     string              `json:"productName" validate:"required"`
	BrandName       string              `json:"brandName"`
	CategoryID      string              `json:"categoryId"`
	SubcategoryID   string              `json:"subcategoryId"`
	ProductImage    []string            `json:"productImage"`
	Description     string              `json:"description"`
	Price           decimal.Decimal     `json:"price" validate:"gte=0"`
	SellingPrice    decimal.NullDecimal `json:"sellingPrice" validate:"gte=0"`
	QuantityOptions []QuantityOption    `json:"quantityOptions" validate:"dive"`
}

func (s Subcategory) FirstImage() string {
	if len(s.Image) == 0 {
		return ""
	}
	return s.Image[0]
}

func (p Product) FirstImage() string {
	if len(p.ProductImage) == 0 {
		return ""
	}
	return p.ProductImage[0]
}
