package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names understood by the authorization policy.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role      string         `gorm:"size:20;not null;default:'operator'" json:"role"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
