package models

import "github.com/google/uuid"

// ProductStatus — lifecycle state of a catalog product
type ProductStatus string

const (
	StatusDraft  ProductStatus = "Draft"
	StatusActive ProductStatus = "Active"
)

// Product — products table
type Product struct {
	Base
	Name          string        `gorm:"not null" json:"name"`
	Price         float64       `gorm:"not null" json:"price"`
	Description   string        `gorm:"type:text" json:"description"`
	Specification string        `gorm:"type:text" json:"specification"`
	CategoryID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *Category     `json:"category,omitempty"`
	Discount      float64       `gorm:"not null;default:0" json:"discount"`
	Featured      bool          `gorm:"not null;default:false" json:"featured"`
	Status        ProductStatus `gorm:"type:varchar(16);not null;default:'Draft'" json:"status"`
	Assets        []Asset       `gorm:"constraint:OnDelete:CASCADE" json:"assets"`
}
