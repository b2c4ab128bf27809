package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item with its own stock. Producing one unit consumes
// the materials listed in Materials, or, for records created before
// structured associations existed, MaterialQuantity of the single MaterialID.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Category    string          `gorm:"size:100" json:"category,omitempty"`
	Supplier    string          `gorm:"size:255" json:"supplier,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`

	Materials []ProductMaterial `gorm:"constraint:OnDelete:CASCADE" json:"materials,omitempty"`

	// Legacy single-material reference.
	MaterialID       *uint `gorm:"index" json:"material_id,omitempty"`
	MaterialQuantity int   `gorm:"not null;default:0" json:"material_quantity,omitempty"`
}

// ProductMaterial is the quantity of a material consumed per unit of product.
type ProductMaterial struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	ProductID  uint      `gorm:"index;not null" json:"-"`
	MaterialID uint      `gorm:"index;not null" json:"material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
}

// Requirement is one material draw for a single unit of product.
type Requirement struct {
	MaterialID uint
	PerUnit    int
}

// Requirements lists the per-unit material draws. Structured associations
// win over the legacy field; associations with a non-positive quantity are
// skipped.
func (p *Product) Requirements() []Requirement {
	if len(p.Materials) > 0 {
		out := make([]Requirement, 0, len(p.Materials))
		for _, pm := range p.Materials {
			if pm.MaterialID == 0 || pm.Quantity <= 0 {
				continue
			}
			out = append(out, Requirement{MaterialID: pm.MaterialID, PerUnit: pm.Quantity})
		}
		return out
	}
	if p.MaterialID != nil && *p.MaterialID != 0 && p.MaterialQuantity > 0 {
		return []Requirement{{MaterialID: *p.MaterialID, PerUnit: p.MaterialQuantity}}
	}
	return nil
}
