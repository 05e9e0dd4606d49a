package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Well-known section types.
const (
	SectionBannerCarousel = "banner_carousel"
	SectionAddress        = "ADDRESS"
)

// Page — pages table (editable site pages addressed by slug)
type Page struct {
	Base
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Published   bool      `json:"published"`
	Sections    []Section `gorm:"constraint:OnDelete:CASCADE" json:"sections"`
}

// Section — sections table; Data carries the type-specific payload as JSON
type Section struct {
	Base
	PageID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"page_id"`
	Type    string         `gorm:"not null" json:"type"`
	Data    datatypes.JSON `gorm:"type:jsonb" json:"data"`
	Order   int            `gorm:"column:order;not null" json:"order"`
	Visible bool           `json:"visible"`
}
