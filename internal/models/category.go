// internal/models/category.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Category owns an ordered list of subcategories. Names are unique.
type Category struct {
	BaseModel
	Name          string        `json:"name" gorm:"uniqueIndex;size:255;not null"`
	SubCategories []Subcategory `json:"subCategories" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// Subcategory has no lifecycle of its own; it lives and dies with its Category.
type Subcategory struct {
	ID         uuid.UUID      `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CategoryID uuid.UUID      `json:"-" gorm:"type:uuid;not null;index:idx_subcategories_category_position,priority:1"`
	Position   int            `json:"-" gorm:"not null;default:0;index:idx_subcategories_category_position,priority:2"`
	Name       string         `json:"name" gorm:"size:255;not null"`
	Image      pq.StringArray `json:"image" gorm:"type:text[]"`
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// FirstImage returns the first image reference or "" when none is set.
func (s Subcategory) FirstImage() string {
	if len(s.Image) == 0 {
		return ""
	}
	return s.Image[0]
}
