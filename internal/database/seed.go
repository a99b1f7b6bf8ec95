// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kanistore/storefront/internal/models"
)

type seedProduct struct {
	name        string
	brand       string
	image       string
	description string
	price       int64
	selling     int64
	options     models.QuantityOptions
}

type seedSubcategory struct {
	name     string
	image    string
	products []seedProduct
}

type seedCategory struct {
	name          string
	subcategories []seedSubcategory
}

func qty(label string, price int64) models.QuantityOption {
	return models.QuantityOption{Quantity: label, Price: decimal.NewFromInt(price)}
}

var seedCatalog = []seedCategory{
	{
		name: "Groceries",
		subcategories: []seedSubcategory{
			{
				name:  "Oils",
				image: "subcategories/oils.png",
				products: []seedProduct{
					{
						name:        "Cold Pressed Groundnut Oil",
						brand:       "Kani",
						image:       "products/groundnut-oil.png",
						description: "<p>Wood pressed <b>groundnut oil</b> from Tamil Nadu farms.</p>",
						price:       130,
						options:     models.QuantityOptions{qty("1L", 120), qty("5L", 550)},
					},
					{
						name:        "Gingelly Oil",
						brand:       "Kani",
						image:       "products/gingelly-oil.png",
						description: "<p>Traditional sesame oil.</p>",
						price:       180,
						selling:     160,
					},
				},
			},
			{
				name:  "Rice",
				image: "subcategories/rice.png",
				products: []seedProduct{
					{
						name:        "Ponni Boiled Rice",
						brand:       "Kani",
						image:       "products/ponni-rice.png",
						description: "<p>Aged ponni rice.</p>",
						price:       75,
						options:     models.QuantityOptions{qty("1kg", 70), qty("5kg", 340), qty("25kg", 1600)},
					},
				},
			},
		},
	},
	{
		name: "Offers",
		subcategories: []seedSubcategory{
			{
				name:  "Combo Packs",
				image: "subcategories/combo.png",
				products: []seedProduct{
					{
						name:        "Kitchen Essentials Combo",
						image:       "products/combo.png",
						description: "<p>Groundnut oil 1L, ponni rice 5kg and toor dal 1kg.</p>",
						price:       600,
						selling:     520,
					},
				},
			},
		},
	},
}

// SeedInitialData inserts the demo catalog. Categories that already exist are skipped.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	for _, sc := range seedCatalog {
		var count int64
		if err := db.Model(&models.Category{}).Where("name = ?", sc.name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check category %s: %w", sc.name, err)
		}
		if count > 0 {
			continue
		}

		err := WithTransaction(db, func(tx *gorm.DB) error {
			return seedCategoryTree(tx, sc)
		})
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", sc.name, err)
		}

		logrus.WithField("category", sc.name).Info("Seeded category")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedCategoryTree(tx *gorm.DB, sc seedCategory) error {
	category := &models.Category{Name: sc.name}
	for i, sub := range sc.subcategories {
		category.SubCategories = append(category.SubCategories, models.Subcategory{
			Name:     sub.name,
			Position: i,
			Image:    pq.StringArray{sub.image},
		})
	}

	if err := tx.Create(category).Error; err != nil {
		return err
	}

	for i, sub := range sc.subcategories {
		for _, sp := range sub.products {
			product := &models.Product{
				ProductName:     sp.name,
				BrandName:       sp.brand,
				CategoryID:      category.ID,
				SubcategoryID:   category.SubCategories[i].ID,
				ProductImage:    pq.StringArray{sp.image},
				Description:     sp.description,
				Price:           decimal.NewFromInt(sp.price),
				QuantityOptions: sp.options,
			}
			if sp.selling > 0 {
				product.SellingPrice = decimal.NewNullDecimal(decimal.NewFromInt(sp.selling))
			}

			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
