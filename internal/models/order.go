package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusFinished     OrderStatus = "finished"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusInProduction, OrderStatusFinished,
	OrderStatusDelivered, OrderStatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:      "Pendente",
	OrderStatusInProduction: "Em produção",
	OrderStatusFinished:     "Finalizado",
	OrderStatusDelivered:    "Entregue",
	OrderStatusCancelled:    "Cancelado",
}

// Label is the Portuguese display label.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsOpen reports whether the order still counts as pending work.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusPending || s == OrderStatusInProduction
}

// ParseOrderStatus accepts a status code or its display label, case-insensitive.
func ParseOrderStatus(s string) (OrderStatus, error) {
	in := strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if strings.EqualFold(in, string(st)) || strings.EqualFold(in, statusLabels[st]) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is a customer order. Client fields are copied at creation time and are
// not refreshed when the client changes.
type Order struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID      uint   `gorm:"index;not null" json:"client_id"`
	ClientName    string `gorm:"size:255" json:"client_name"`
	ClientEmail   string `gorm:"size:255" json:"client_email,omitempty"`
	ClientCompany string `gorm:"size:255" json:"client_company,omitempty"`

	Status    OrderStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	OrderDate time.Time       `gorm:"not null;index" json:"order_date"`
	Discount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. ProductName and UnitPrice are stored as
// given so the order keeps its history when products change.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	OrderID     uint            `gorm:"index;not null" json:"-"`
	Position    int             `gorm:"not null;default:0" json:"-"`
	ProductID   *uint           `gorm:"index" json:"product_id,omitempty"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
}

// LineTotal is quantity times unit price.
func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Subtotal sums the line totals.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Total is the subtotal minus the discount, never below zero.
func (o *Order) Total() decimal.Decimal {
	t := o.Subtotal().Sub(o.Discount)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// Number is the short quote number printed on documents: the last three
// digits of the id.
func (o *Order) Number() string {
	return fmt.Sprintf("%03d", o.ID%1000)
}
