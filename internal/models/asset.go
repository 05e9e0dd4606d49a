package models

import "github.com/google/uuid"

// AssetType — kind of media attached to a product
type AssetType string

const (
	AssetImage AssetType = "IMAGE"
	AssetVideo AssetType = "VIDEO"
)

// Asset — assets table. Order is 1-based and contiguous within a product's
// gallery; the asset at order 1 is the main image.
type Asset struct {
	Base
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	URL       string    `gorm:"not null" json:"url"`
	Alt       string    `gorm:"not null" json:"alt"`
	Type      AssetType `gorm:"type:varchar(8);not null" json:"type"`
	Order     int       `gorm:"column:order;not null" json:"order"`
}
