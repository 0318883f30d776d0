package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vigencia
// ──────────────────────────────────────────────────────────────────────────────

func TestIsCurrentlyValid_Bordes(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	sp := &entity.SpecialPrice{Active: true, Validity: entity.Validity{Start: start, End: end}}

	assert.True(t, sp.IsCurrentlyValid(start), "inicio inclusive")
	assert.True(t, sp.IsCurrentlyValid(end), "fin inclusive")
	assert.True(t, sp.IsCurrentlyValid(start.Add(24*time.Hour)))
	assert.False(t, sp.IsCurrentlyValid(start.Add(-time.Nanosecond)))
	assert.False(t, sp.IsCurrentlyValid(end.Add(time.Nanosecond)))

	sp.Active = false
	assert.False(t, sp.IsCurrentlyValid(start.Add(time.Hour)), "inactivo nunca aplica")

	var missing *entity.SpecialPrice
	assert.False(t, missing.IsCurrentlyValid(start))
}

func TestParseClientType(t *testing.T) {
	cases := []struct {
		in   string
		want entity.ClientType
		ok   bool
	}{
		{"", entity.ClientTypePremium, true},
		{"VIP", entity.ClientTypeVIP, true},
		{" premium ", entity.ClientTypePremium, true},
		{"Mayorista", entity.ClientTypeWholesale, true},
		{"corporativo", entity.ClientTypeCorporate, true},
		{"EMPLEADO", entity.ClientTypeEmployee, true},
		{"oro", "", false},
	}
	for _, tc := range cases {
		got, ok := entity.ParseClientType(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Identificador de producto
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizeProductID(t *testing.T) {
	assert.Equal(t, entity.ProductID("12"), entity.NormalizeProductID(" 12 "))
	assert.Equal(t, entity.ProductID("12"), entity.NormalizeProductID("12.0"))
	assert.Equal(t, entity.ProductID("12.5"), entity.NormalizeProductID("12.50"))
	assert.Equal(t, entity.ProductID("007"), entity.NormalizeProductID("007"), "ceros a la izquierda se conservan")
	assert.Equal(t, entity.ProductID("SKU-9"), entity.NormalizeProductID("SKU-9"))
	assert.True(t, entity.NormalizeProductID("   ").IsZero())
}

func TestProductID_UnmarshalJSON(t *testing.T) {
	var in struct {
		A entity.ProductID `json:"a"`
		B entity.ProductID `json:"b"`
		C entity.ProductID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "42", "c": null}`), &in))
	assert.Equal(t, in.A, in.B, "número y string representan el mismo producto")
	assert.True(t, in.C.IsZero())

	var bad entity.ProductID
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
