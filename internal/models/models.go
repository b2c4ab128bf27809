// Package models holds the persisted entities of the print shop.
package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Client{},
		&Material{},
		&Product{},
		&ProductMaterial{},
		&Order{},
		&OrderItem{},
		&StockMovement{},
	}
}
