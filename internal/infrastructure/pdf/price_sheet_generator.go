// Package pdf genera la hoja de precios especiales vigentes de un usuario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + tipo de cliente │  Fecha de generación     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Email / Id                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | P.Original | P.Especial | Dto | Vence     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: cantidad de productos + leyenda de vigencia        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorAccent  = &props.Color{Red: 0, Green: 128, Blue: 64}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.PriceSheetGenerator = (*PriceSheetGenerator)(nil)

// PriceSheetGenerator implementa ports.PriceSheetGenerator usando Maroto v2.
type PriceSheetGenerator struct {
	company string
}

// NewPriceSheetGenerator construye el generador; company aparece como autor del documento.
func NewPriceSheetGenerator(company string) *PriceSheetGenerator {
	return &PriceSheetGenerator{company: company}
}

// GeneratePriceSheet genera el PDF y devuelve sus bytes.
func (g *PriceSheetGenerator) GeneratePriceSheet(_ context.Context, sheet ports.PriceSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Precios especiales - "+sheet.UserName, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(sheet.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(sheet))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(sheet ports.PriceSheet) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("LISTA DE PRECIOS ESPECIALES", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Cliente "+nonEmpty(sheet.ClientType, "Premium"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(sheet.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func clientRow(sheet ports.PriceSheet) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(sheet.UserName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
			text.New(fmt.Sprintf("Email: %s   |   Id: %s", nonEmpty(sheet.Email, "—"), sheet.UserID),
				props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("P. Original", 2, align.Right),
		h("P. Especial", 2, align.Right),
		h("Dto.", 2, align.Center),
		h("Vence", 2, align.Center),
	)
}

func tableRows(lines []ports.PriceSheetLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(l.ProductName+" ("+l.ProductID+")",
				props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(l.OriginalPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(l.SpecialPrice),
				props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right, Top: 1, Right: 1, Color: colorAccent})),
			col.New(2).Add(text.New(l.DiscountPercent.StringFixed(0)+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.ValidUntil.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return rows
}

func summaryRow(sheet ports.PriceSheet) core.Row {
	return row.New(14).Add(col.New(12).Add(
		text.New(fmt.Sprintf("%d producto(s) con precio especial vigente.", len(sheet.Lines)),
			props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		text.New("Los precios aplican hasta la fecha de vencimiento indicada y pueden cambiar sin previo aviso.",
			props.Text{Size: 7, Top: 8, Color: colorGray}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formato es-CO: puntos de miles y coma decimal; omite ",00".
// Ej: 25000 → "$25.000", 1234567.5 → "$1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + "$" + string(buf)
	if frac != "00" {
		out += "," + frac
	}
	return out
}
