package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func uintPtr(v uint) *uint { return &v }

func TestProduct_Requirements(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    []Requirement
	}{
		{
			name: "structured associations",
			product: Product{Materials: []ProductMaterial{
				{MaterialID: 1, Quantity: 2},
				{MaterialID: 2, Quantity: 0},
				{MaterialID: 3, Quantity: 1},
			}},
			want: []Requirement{{MaterialID: 1, PerUnit: 2}, {MaterialID: 3, PerUnit: 1}},
		},
		{
			name:    "structured wins over legacy",
			product: Product{Materials: []ProductMaterial{{MaterialID: 5, Quantity: 4}}, MaterialID: uintPtr(9), MaterialQuantity: 1},
			want:    []Requirement{{MaterialID: 5, PerUnit: 4}},
		},
		{
			name:    "legacy reference",
			product: Product{MaterialID: uintPtr(9), MaterialQuantity: 3},
			want:    []Requirement{{MaterialID: 9, PerUnit: 3}},
		},
		{
			name:    "legacy with zero quantity",
			product: Product{MaterialID: uintPtr(9)},
			want:    nil,
		},
		{
			name:    "no materials",
			product: Product{},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.product.Requirements()
			if len(got) != len(tt.want) {
				t.Fatalf("Requirements() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Requirements()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOrder_Totals(t *testing.T) {
	o := Order{
		Discount: decimal.RequireFromString("5"),
		Items: []OrderItem{
			{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("10")},
		},
	}
	if got := o.Subtotal().StringFixed(2); got != "17.50" {
		t.Errorf("Subtotal() = %s, want 17.50", got)
	}
	if got := o.Total().StringFixed(2); got != "12.50" {
		t.Errorf("Total() = %s, want 12.50", got)
	}
	o.Discount = decimal.NewFromInt(100)
	if !o.Total().IsZero() {
		t.Errorf("Total() with large discount = %s, want 0", o.Total())
	}
}

func TestOrder_Number(t *testing.T) {
	tests := []struct {
		id   uint
		want string
	}{
		{7, "007"},
		{42, "042"},
		{1234, "234"},
	}
	for _, tt := range tests {
		o := Order{ID: tt.id}
		if got := o.Number(); got != tt.want {
			t.Errorf("Number() for %d = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{"pending", OrderStatusPending, false},
		{"Pendente", OrderStatusPending, false},
		{"em produção", OrderStatusInProduction, false},
		{"IN_PRODUCTION", OrderStatusInProduction, false},
		{"Entregue", OrderStatusDelivered, false},
		{"Cancelado", OrderStatusCancelled, false},
		{"shipped", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrderStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrderStatus(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseOrderStatus(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
	if !OrderStatusInProduction.IsOpen() || OrderStatusDelivered.IsOpen() {
		t.Errorf("IsOpen mismatch")
	}
	if OrderStatusFinished.Label() != "Finalizado" {
		t.Errorf("unexpected label %s", OrderStatusFinished.Label())
	}
}

func TestClient_DisplayName(t *testing.T) {
	c := Client{Name: "Maria"}
	if c.DisplayName() != "Maria" {
		t.Errorf("DisplayName() = %s", c.DisplayName())
	}
	c.Company = "Escola Modelo"
	if c.DisplayName() != "Escola Modelo" {
		t.Errorf("DisplayName() = %s", c.DisplayName())
	}
}

func TestPriceMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{Name: "Cartão", Price: decimal.RequireFromString("0.35")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["price"].(float64); !ok {
		t.Errorf("price encoded as %T, want number", raw["price"])
	}
}
