package usecase

import (
	"time"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/pricing"
)

func toUserResponse(u entity.SpecialPriceUser) dto.SpecialPriceUserResponse {
	return dto.SpecialPriceUserResponse{
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		ClientType: string(u.ClientType),
	}
}

func toSpecialPriceResponse(sp *entity.SpecialPrice, now time.Time) *dto.SpecialPriceResponse {
	if sp == nil {
		return nil
	}
	return &dto.SpecialPriceResponse{
		ID:   sp.ID,
		User: toUserResponse(sp.User),
		Product: dto.SpecialPriceProductResponse{
			ProductID:     sp.Product.ProductID,
			Name:          sp.Product.Name,
			OriginalPrice: sp.Product.OriginalPrice,
		},
		SpecialPrice:    sp.SpecialPrice,
		DiscountPercent: sp.DiscountPercent,
		Validity:        dto.ValidityResponse{Start: sp.Validity.Start, End: sp.Validity.End},
		Active:          sp.Active,
		Reason:          sp.Reason,
		CreatedBy:       sp.CreatedBy,
		CurrentlyValid:  sp.IsCurrentlyValid(now),
		CreatedAt:       sp.CreatedAt,
		UpdatedAt:       sp.UpdatedAt,
	}
}

func toEffectivePriceResponse(v pricing.EffectivePrice, asOf time.Time) dto.EffectivePriceResponse {
	return dto.EffectivePriceResponse{
		ProductID:       v.ProductID,
		BasePrice:       v.BasePrice,
		FinalPrice:      v.FinalPrice,
		DiscountPercent: v.DiscountPercent,
		HasOverride:     v.HasOverride,
		SpecialPriceID:  v.SpecialPriceID,
		ValidUntil:      v.ValidUntil,
		AsOf:            asOf,
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		Active:      p.Active,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// withEffectivePrice agrega los campos de resolución a la salida del producto.
func withEffectivePrice(out *dto.ProductResponse, v pricing.EffectivePrice) *dto.ProductResponse {
	original := v.BasePrice
	final := v.FinalPrice
	discount := v.DiscountPercent
	has := v.HasOverride
	out.OriginalPrice = &original
	out.FinalPrice = &final
	out.DiscountPercent = &discount
	out.HasDiscount = &has
	if v.HasOverride {
		special := v.FinalPrice
		out.SpecialPrice = &special
	}
	return out
}
