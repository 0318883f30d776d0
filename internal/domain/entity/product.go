package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductID identificador opaco del producto. Los catálogos de origen usan string o número;
// se normaliza a string canónico en el borde para que igualdad y unicidad estén bien definidas.
type ProductID string

// NormalizeProductID recorta espacios y canoniza representaciones numéricas ("12", 12, 12.0 → "12").
func NormalizeProductID(raw string) ProductID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(s); err == nil && looksNumeric(s) {
		return ProductID(d.String())
	}
	return ProductID(s)
}

// numericID reconoce números JSON sin exponente ni ceros a la izquierda ("007" se conserva tal cual).
var numericID = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

func looksNumeric(s string) bool { return numericID.MatchString(s) }

// String implementa fmt.Stringer.
func (id ProductID) String() string { return string(id) }

// IsZero indica si el id está vacío.
func (id ProductID) IsZero() bool { return id == "" }

// UnmarshalJSON acepta string o número.
func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NormalizeProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("productId debe ser string o número: %w", err)
	}
	*id = NormalizeProductID(n.String())
	return nil
}

// Product representa un producto del catálogo. Es de solo lectura para el motor de precios.
type Product struct {
	ID          ProductID
	Name        string
	Description string
	Price       decimal.Decimal // precio base
	Category    string
	Stock       int
	Active      bool
	SKU         string // único cuando está presente
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter filtros del listado de catálogo.
type ProductFilter struct {
	Category string // coincidencia parcial, sin distinguir mayúsculas
	Search   string // sobre nombre y descripción
	Active   *bool  // nil = todos
	Limit    int
	Offset   int
}
