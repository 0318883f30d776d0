package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"999", "$999"},
		{"25000", "$25.000"},
		{"1234567.5", "$1.234.567,50"},
		{"15000.499", "$15.000,50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestGeneratePriceSheet(t *testing.T) {
	g := NewPriceSheetGenerator("Tienda García")
	sheet := ports.PriceSheet{
		UserID:      "u-1",
		UserName:    "Ana García",
		Email:       "ana@example.com",
		ClientType:  "VIP",
		GeneratedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Lines: []ports.PriceSheetLine{
			{
				ProductID:       "12",
				ProductName:     "Café de origen",
				OriginalPrice:   decimal.NewFromInt(100),
				SpecialPrice:    decimal.NewFromInt(80),
				DiscountPercent: decimal.NewFromInt(20),
				ValidUntil:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	out, err := g.GeneratePriceSheet(context.Background(), sheet)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "la salida debe ser un PDF")
}
