package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
	"github.com/jhoicas/precios-especiales-api/internal/domain"
)

// PriceSheetUseCase genera la hoja (PDF) de precios especiales vigentes de un usuario.
// Reporta los campos del registro: precio original de la instantánea y descuento almacenado.
type PriceSheetUseCase struct {
	resolver  *Resolver
	generator ports.PriceSheetGenerator
}

// NewPriceSheetUseCase construye el caso de uso.
func NewPriceSheetUseCase(resolver *Resolver, generator ports.PriceSheetGenerator) *PriceSheetUseCase {
	return &PriceSheetUseCase{resolver: resolver, generator: generator}
}

// Generate devuelve (pdf, nombre de archivo). Sin registros vigentes devuelve *domain.NotFoundError.
func (uc *PriceSheetUseCase) Generate(ctx context.Context, userID string, asOf *time.Time) ([]byte, string, error) {
	records, err := uc.resolver.ListActiveForUser(ctx, userID, asOf)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", &domain.NotFoundError{Resource: "precios especiales vigentes del usuario", ID: userID}
	}

	first := records[0].User
	sheet := ports.PriceSheet{
		UserID:      first.UserID,
		UserName:    first.Name,
		Email:       first.Email,
		ClientType:  string(first.ClientType),
		GeneratedAt: uc.resolver.at(asOf),
		Lines:       make([]ports.PriceSheetLine, 0, len(records)),
	}
	for _, sp := range records {
		sheet.Lines = append(sheet.Lines, ports.PriceSheetLine{
			ProductID:       sp.Product.ProductID.String(),
			ProductName:     sp.Product.Name,
			OriginalPrice:   sp.Product.OriginalPrice,
			SpecialPrice:    sp.SpecialPrice,
			DiscountPercent: sp.DiscountPercent,
			ValidUntil:      sp.Validity.End,
		})
	}

	pdf, err := uc.generator.GeneratePriceSheet(ctx, sheet)
	if err != nil {
		return nil, "", fmt.Errorf("hoja de precios: %w", err)
	}
	filename := fmt.Sprintf("precios-especiales-%s-%s.pdf", userID, sheet.GeneratedAt.Format("20060102"))
	return pdf, filename, nil
}
