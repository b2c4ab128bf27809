package pdf

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"1.5", "R$ 1,50"},
		{"1234.567", "R$ 1234,57"},
		{"45", "R$ 45,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BRL(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestQuotePDF(t *testing.T) {
	q := QuoteData{
		Number:  "042",
		Date:    "05 de março de 2024",
		Company: CompanyData{Name: "Copiadora Pernambuco", Tagline: "Copiadora & Gráfica Rápida", Address: "Rua do Príncipe, 307", Phone: "(81) 3037-6012"},
		Client:  ClientData{Name: "Maria Silva", Company: "Gráfica MS"},
		Items: []QuoteItem{
			{Description: "Panfleto A5", Quantity: 100, UnitPrice: decimal.RequireFromString("0.50"), Total: decimal.RequireFromString("50")},
		},
		Discount: decimal.RequireFromString("5"),
		Total:    decimal.RequireFromString("45"),
		Notes:    "Retirar na loja",
	}
	out, err := QuotePDF(q)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestQuotePDFWithoutItems(t *testing.T) {
	out, err := QuotePDF(QuoteData{Number: "001", Company: CompanyData{Name: "Loja"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
