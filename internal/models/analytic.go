package models

import "github.com/google/uuid"

// AnalyticType — what a traffic record points at
type AnalyticType string

const (
	AnalyticPage    AnalyticType = "PAGE"
	AnalyticProduct AnalyticType = "PRODUCT"
	AnalyticButton  AnalyticType = "BUTTON"
)

// Analytic — analytics table, one row per recorded visit/click
type Analytic struct {
	Base
	Type      AnalyticType `gorm:"type:varchar(16);not null" json:"type"`
	TargetID  uuid.UUID    `gorm:"type:uuid;column:target_id;not null" json:"target_id"`
	URL       string       `gorm:"not null" json:"url"`
	IPAddress string       `gorm:"column:ip_address;not null" json:"ip_address"`
	Location  string       `gorm:"not null" json:"location"`
}
