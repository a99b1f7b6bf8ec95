// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product carries either a flat SellingPrice or a list of QuantityOptions.
type Product struct {
	BaseModel
	ProductName     string              `json:"productName" gorm:"size:255;not null"`
	BrandName       string              `json:"brandName,omitempty" gorm:"size:255"`
	CategoryID      uuid.UUID           `json:"categoryId" gorm:"type:uuid;not null;index"`
	SubcategoryID   uuid.UUID           `json:"subcategoryId" gorm:"type:uuid;not null;index"`
	ProductImage    pq.StringArray      `json:"productImage" gorm:"type:text[]"`
	Description     string              `json:"description" gorm:"type:text"`
	Price           decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	SellingPrice    decimal.NullDecimal `json:"sellingPrice" gorm:"type:decimal(10,2)"`
	QuantityOptions QuantityOptions     `json:"quantityOptions" gorm:"type:jsonb"`
}

// QuantityOption is a named pricing tier such as "1L" or "5L".
type QuantityOption struct {
	Quantity string          `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type QuantityOptions []QuantityOption

func (q QuantityOptions) Value() (driver.Value, error) {
	if q == nil {
		return nil, nil
	}
	return json.Marshal(q)
}

func (q *QuantityOptions) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}

	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(bytes, q)
}
