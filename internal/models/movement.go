package models

import "time"

// Stock movement entity types and reasons.
const (
	EntityProduct  = "product"
	EntityMaterial = "material"

	ReasonOrder      = "order"
	ReasonAdjustment = "adjustment"
)

// StockMovement records one stock change. Delta is negative for outgoing stock.
type StockMovement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	EntityType  string    `gorm:"size:20;not null;index:idx_movement_entity" json:"entity_type"`
	EntityID    uint      `gorm:"not null;index:idx_movement_entity" json:"entity_id"`
	Delta       int       `gorm:"not null" json:"delta"`
	StockBefore int       `gorm:"not null" json:"stock_before"`
	StockAfter  int       `gorm:"not null" json:"stock_after"`
	Reason      string    `gorm:"size:30;not null" json:"reason"`
	Note        string    `gorm:"size:500" json:"note,omitempty"`
	OrderID     *uint     `gorm:"index" json:"order_id,omitempty"`
	UserID      *uint     `json:"user_id,omitempty"`
}
