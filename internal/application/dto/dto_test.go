package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
)

func TestParseTimestamp(t *testing.T) {
	got, err := dto.ParseTimestamp("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = dto.ParseTimestamp("2025-03-01T10:15")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	got, err = dto.ParseTimestamp("2025-03-01T10:15:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 15, 15, 0, 0, time.UTC), got.UTC())

	_, err = dto.ParseTimestamp("01/03/2025")
	assert.Error(t, err)
}

func TestCreateRequest_Unmarshal(t *testing.T) {
	var in dto.CreateSpecialPriceRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"product": {"productId": 12.0},
		"specialPrice": "19.90",
		"validity": {"start": null, "end": "2025-12-31"}
	}`), &in))
	assert.Equal(t, "12", in.Product.ProductID.String())
	assert.Equal(t, "19.9", in.SpecialPrice.String())
	assert.Nil(t, in.Validity.Start)
	require.NotNil(t, in.Validity.End)
	assert.Equal(t, 2025, in.Validity.End.Year())

	assert.False(t, in.SpecialPrice.Invalid)
	assert.False(t, in.Validity.End.Invalid)
}

// Los valores mal formados no cortan la decodificación: quedan marcados y el resto del cuerpo se lee.
func TestCreateRequest_UnmarshalValoresMalFormados(t *testing.T) {
	var in dto.CreateSpecialPriceRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"user": {"userId": "u-1"},
		"specialPrice": "",
		"validity": {"start": "31/12/2025", "end": 20251231},
		"reason": "después del error"
	}`), &in))
	require.NotNil(t, in.SpecialPrice)
	assert.True(t, in.SpecialPrice.Invalid)
	assert.True(t, in.Validity.Start.Invalid)
	assert.True(t, in.Validity.End.Invalid)
	assert.Equal(t, "u-1", in.User.UserID)
	assert.Equal(t, "después del error", in.Reason)
}

func TestPagination(t *testing.T) {
	p := dto.PageRequest{Page: 0, Limit: 500}
	p.DefaultPage()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.Offset())

	p = dto.PageRequest{Page: 3}
	p.DefaultPage()
	assert.Equal(t, 20, p.Offset())

	page := dto.NewPagination(p, 21)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 21, page.Total)
}
