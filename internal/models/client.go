package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Client is a customer of the shop.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"size:255;not null;index" json:"name"`
	Email    string `gorm:"size:255" json:"email,omitempty"`
	Phone    string `gorm:"size:50" json:"phone,omitempty"`
	Document string `gorm:"size:20" json:"document,omitempty"` // CPF or CNPJ
	Address  string `gorm:"size:500" json:"address,omitempty"`
	Company  string `gorm:"size:255" json:"company,omitempty"`
}

// DisplayName is the company when set, otherwise the person's name.
func (c *Client) DisplayName() string {
	if s := strings.TrimSpace(c.Company); s != "" {
		return s
	}
	return c.Name
}
