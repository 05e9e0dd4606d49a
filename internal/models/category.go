package models

// Category — categories table. Name uniqueness is case-sensitive; the
// find-or-create path in the catalog service matches case-insensitively.
type Category struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
