package models

import (
	"time"

	"gorm.io/gorm"
)

// Material is a raw supply consumed when products are made.
type Material struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:255;not null;index" json:"name"`
	Stock       int    `gorm:"not null;default:0" json:"stock"`
	Unit        string `gorm:"size:30" json:"unit,omitempty"` // "folha", "resma", "m²"...
	Category    string `gorm:"size:100" json:"category,omitempty"`
	Supplier    string `gorm:"size:255" json:"supplier,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}
