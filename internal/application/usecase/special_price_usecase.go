package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
	apppricing "github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/application/validation"
	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

// SpecialPriceUseCase casos de uso de precios especiales: alta, modificación, baja y consultas.
// Cada escritura es una única llamada al almacenamiento; la unicidad (usuario, producto) la garantiza
// el repositorio, nunca un chequeo previo.
type SpecialPriceUseCase struct {
	repo      repository.SpecialPriceRepository
	products  repository.ProductRepository
	resolver  *apppricing.Resolver
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewSpecialPriceUseCase construye el caso de uso. publisher puede ser nil.
func NewSpecialPriceUseCase(
	repo repository.SpecialPriceRepository,
	products repository.ProductRepository,
	resolver *apppricing.Resolver,
	publisher ports.EventPublisher,
) *SpecialPriceUseCase {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &SpecialPriceUseCase{
		repo:      repo,
		products:  products,
		resolver:  resolver,
		publisher: publisher,
		now:       resolver.Now,
	}
}

// Create valida la entrada completa, toma la instantánea del producto, calcula el descuento y persiste.
//
// Errores:
//   - *domain.ValidationError con todas las violaciones.
//   - *domain.NotFoundError si el producto referenciado no existe.
//   - *domain.ConflictError si ya existe un registro para el par (aunque esté vencido o inactivo).
func (uc *SpecialPriceUseCase) Create(ctx context.Context, in dto.CreateSpecialPriceRequest) (*dto.SpecialPriceResponse, error) {
	now := uc.now()
	sanitizeCreate(&in)

	violations := validation.Struct(in)
	violations = append(violations, in.Malformed...)
	var special *decimal.Decimal
	switch {
	case in.SpecialPrice == nil:
		violations = append(violations, "specialPrice es requerido")
	case in.SpecialPrice.Invalid:
		violations = append(violations, "specialPrice debe ser numérico")
	default:
		special = &in.SpecialPrice.Decimal
		violations = append(violations, pricing.CheckAmount(*special)...)
	}

	start := now
	var end time.Time
	if in.Validity != nil {
		violations = append(violations, malformedDate("validity.start", in.Validity.Start)...)
		violations = append(violations, malformedDate("validity.end", in.Validity.End)...)
		if in.Validity.Start != nil && !in.Validity.Start.Invalid && !in.Validity.Start.IsZero() {
			start = in.Validity.Start.Time
		}
		if in.Validity.End != nil && !in.Validity.End.Invalid && !in.Validity.End.IsZero() {
			end = in.Validity.End.Time
			if !end.After(now) {
				violations = append(violations, "validity.end debe ser una fecha futura")
			}
			if !start.Before(end) {
				violations = append(violations, "validity.start debe ser anterior a validity.end")
			}
		}
	}

	var product *entity.Product
	if in.Product != nil && !in.Product.ProductID.IsZero() {
		p, err := uc.products.GetByID(ctx, in.Product.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil && len(violations) == 0 {
			return nil, &domain.NotFoundError{Resource: "producto", ID: in.Product.ProductID.String()}
		}
		product = p
	}
	if product != nil && special != nil {
		violations = append(violations, pricing.CheckCeiling(*special, product.Price)...)
	}
	if err := domain.NewValidationError(violations); err != nil {
		return nil, err
	}

	clientType, _ := entity.ParseClientType(in.User.ClientType)
	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = entity.DefaultCreatedBy
	}
	sp := &entity.SpecialPrice{
		ID: uuid.New().String(),
		User: entity.SpecialPriceUser{
			UserID:     in.User.UserID,
			Name:       in.User.Name,
			Email:      in.User.Email,
			ClientType: clientType,
		},
		Product: entity.SpecialPriceProduct{
			ProductID:     product.ID,
			Name:          product.Name,
			OriginalPrice: product.Price,
		},
		SpecialPrice: *special,
		Validity:     entity.Validity{Start: start, End: end},
		Active:       true,
		Reason:       in.Reason,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	pricing.ApplyDerived(sp)

	if err := uc.repo.InsertUnique(ctx, sp); err != nil {
		return nil, err
	}
	log.Debug().Str("id", sp.ID).Str("user_id", sp.User.UserID).Str("product_id", sp.Product.ProductID.String()).
		Msg("precio especial creado")
	uc.publish(ctx, ports.EventSpecialPriceCreated, sp)
	return toSpecialPriceResponse(sp, now), nil
}

// Update aplica un subconjunto de campos mutables. El precio se valida contra la instantánea
// almacenada (no contra el catálogo vivo) y el descuento se recalcula.
func (uc *SpecialPriceUseCase) Update(ctx context.Context, id string, in dto.UpdateSpecialPriceRequest) (*dto.SpecialPriceResponse, error) {
	sp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, &domain.NotFoundError{Resource: "precio especial", ID: id}
	}

	if in.Reason != nil {
		r := strings.TrimSpace(*in.Reason)
		in.Reason = &r
	}
	violations := validation.Struct(in)
	violations = append(violations, in.Malformed...)
	if in.SpecialPrice != nil {
		if in.SpecialPrice.Invalid {
			violations = append(violations, "specialPrice debe ser numérico")
		} else {
			violations = append(violations, pricing.CheckPrice(in.SpecialPrice.Decimal, sp.Product.OriginalPrice)...)
			sp.SpecialPrice = in.SpecialPrice.Decimal
		}
	}
	if in.Validity != nil {
		violations = append(violations, malformedDate("validity.start", in.Validity.Start)...)
		violations = append(violations, malformedDate("validity.end", in.Validity.End)...)
		if in.Validity.Start != nil && !in.Validity.Start.Invalid && !in.Validity.Start.IsZero() {
			sp.Validity.Start = in.Validity.Start.Time
		}
		if in.Validity.End != nil && !in.Validity.End.Invalid && !in.Validity.End.IsZero() {
			sp.Validity.End = in.Validity.End.Time
		}
		if !sp.Validity.Start.Before(sp.Validity.End) {
			violations = append(violations, "validity.start debe ser anterior a validity.end")
		}
	}
	if in.Active != nil {
		sp.Active = *in.Active
	}
	if in.Reason != nil {
		sp.Reason = *in.Reason
	}
	if err := domain.NewValidationError(violations); err != nil {
		return nil, err
	}

	now := uc.now()
	pricing.ApplyDerived(sp)
	sp.UpdatedAt = now
	if err := uc.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	uc.publish(ctx, ports.EventSpecialPriceUpdated, sp)
	return toSpecialPriceResponse(sp, now), nil
}

func malformedDate(field string, ts *dto.Timestamp) []string {
	if ts != nil && ts.Invalid {
		return []string{field + ": fecha inválida (use YYYY-MM-DD o RFC 3339)"}
	}
	return nil
}

// Delete elimina el registro. *domain.NotFoundError si no existe.
func (uc *SpecialPriceUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, ports.EventSpecialPriceDeleted, &entity.SpecialPrice{ID: id})
	return nil
}

// GetByID obtiene un registro por ID.
func (uc *SpecialPriceUseCase) GetByID(ctx context.Context, id string) (*dto.SpecialPriceResponse, error) {
	sp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, &domain.NotFoundError{Resource: "precio especial", ID: id}
	}
	return toSpecialPriceResponse(sp, uc.now()), nil
}

// List listado administrativo paginado, más recientes primero.
func (uc *SpecialPriceUseCase) List(ctx context.Context, in dto.SpecialPriceListRequest) ([]dto.SpecialPriceResponse, *dto.Pagination, error) {
	in.DefaultPage()
	now := uc.now()
	filter := entity.SpecialPriceFilter{
		UserID:    strings.TrimSpace(in.UserID),
		ProductID: entity.NormalizeProductID(in.ProductID),
		Active:    in.Active,
		Limit:     in.Limit,
		Offset:    in.Offset(),
	}
	if in.Current != nil && *in.Current {
		filter.ValidAt = &now
	}
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	items := make([]dto.SpecialPriceResponse, 0, len(list))
	for _, sp := range list {
		items = append(items, *toSpecialPriceResponse(sp, now))
	}
	return items, dto.NewPagination(in.PageRequest, total), nil
}

// Resolve precio efectivo de un usuario para un producto.
func (uc *SpecialPriceUseCase) Resolve(ctx context.Context, userID string, productID entity.ProductID, asOf *time.Time) (*dto.EffectivePriceResponse, error) {
	view, err := uc.resolver.Resolve(ctx, userID, productID, asOf)
	if err != nil {
		return nil, err
	}
	at := uc.now()
	if asOf != nil {
		at = *asOf
	}
	out := toEffectivePriceResponse(view, at)
	out.UserID = userID
	return &out, nil
}

// Check registro vigente para el par o *domain.NotFoundError.
func (uc *SpecialPriceUseCase) Check(ctx context.Context, userID string, productID entity.ProductID, asOf *time.Time) (*dto.SpecialPriceResponse, error) {
	sp, err := uc.resolver.FindCurrent(ctx, userID, productID, asOf)
	if err != nil {
		return nil, err
	}
	return toSpecialPriceResponse(sp, uc.now()), nil
}

// ListForUser precios especiales vigentes de un usuario.
func (uc *SpecialPriceUseCase) ListForUser(ctx context.Context, userID string, asOf *time.Time) ([]dto.SpecialPriceResponse, error) {
	records, err := uc.resolver.ListActiveForUser(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]dto.SpecialPriceResponse, 0, len(records))
	for _, sp := range records {
		out = append(out, *toSpecialPriceResponse(sp, now))
	}
	return out, nil
}

// ListForProduct usuarios con precio especial vigente para un producto.
func (uc *SpecialPriceUseCase) ListForProduct(ctx context.Context, productID entity.ProductID, asOf *time.Time) ([]dto.ProductHolderResponse, error) {
	holders, err := uc.resolver.ListActiveForProduct(ctx, productID, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductHolderResponse, 0, len(holders))
	for _, h := range holders {
		out = append(out, dto.ProductHolderResponse{
			User:            toUserResponse(h.User),
			SpecialPrice:    h.SpecialPrice.SpecialPrice,
			DiscountPercent: h.SpecialPrice.DiscountPercent,
		})
	}
	return out, nil
}

func (uc *SpecialPriceUseCase) publish(ctx context.Context, eventType string, sp *entity.SpecialPrice) {
	ev := ports.SpecialPriceEvent{
		Type:            eventType,
		ID:              sp.ID,
		UserID:          sp.User.UserID,
		ProductID:       sp.Product.ProductID.String(),
		SpecialPrice:    sp.SpecialPrice,
		DiscountPercent: sp.DiscountPercent,
		Active:          sp.Active,
		OccurredAt:      uc.now(),
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("id", sp.ID).Msg("no se pudo publicar el evento")
	}
}

// sanitizeCreate recorta espacios y pliega el email a minúsculas antes de validar.
func sanitizeCreate(in *dto.CreateSpecialPriceRequest) {
	if in.User != nil {
		in.User.UserID = strings.TrimSpace(in.User.UserID)
		in.User.Name = strings.TrimSpace(in.User.Name)
		in.User.Email = cases.Fold().String(strings.TrimSpace(in.User.Email))
		in.User.ClientType = strings.TrimSpace(in.User.ClientType)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
}
