package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
	"github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/application/usecase"
	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.SpecialPriceEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.SpecialPriceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	clock    *clock
	products *memory.ProductRepo
	prices   *memory.SpecialPriceRepo
	events   *recordingPublisher
	uc       *usecase.SpecialPriceUseCase
}

func newFixture() *fixture {
	clk := &clock{now: time.Date(2025, 4, 15, 9, 30, 0, 0, time.UTC)}
	products := memory.NewProductRepo(
		&entity.Product{ID: "P1", Name: "Aceite", Price: decimal.NewFromInt(100), Active: true},
		&entity.Product{ID: "P2", Name: "Harina", Price: decimal.NewFromInt(40), Active: true},
	)
	prices := memory.NewSpecialPriceRepo()
	events := &recordingPublisher{}
	resolver := pricing.NewResolver(products, prices, clk.Now)
	return &fixture{
		clock:    clk,
		products: products,
		prices:   prices,
		events:   events,
		uc:       usecase.NewSpecialPriceUseCase(prices, products, resolver, events),
	}
}

func ts(t time.Time) *dto.Timestamp { return &dto.Timestamp{Time: t} }

func price(v int64) *dto.Amount { return dto.NewAmount(decimal.NewFromInt(v)) }

func (f *fixture) request(userID string, productID entity.ProductID, special int64) dto.CreateSpecialPriceRequest {
	now := f.clock.Now()
	return dto.CreateSpecialPriceRequest{
		User:         &dto.SpecialPriceUserInput{UserID: userID, Name: "Cliente " + userID, Email: userID + "@example.com"},
		Product:      &dto.SpecialPriceProductInput{ProductID: productID},
		SpecialPrice: price(special),
		Validity:     &dto.ValidityInput{Start: ts(now.Add(-24 * time.Hour)), End: ts(now.Add(10 * 24 * time.Hour))},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

// Escenarios A y B: el registro aplica dentro de la vigencia y deja de aplicar al vencer.
func TestCreateAndResolve_Vigencia(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.request("U1", "P1", 80))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(created.DiscountPercent))
	assert.Equal(t, entity.DefaultCreatedBy, created.CreatedBy)
	assert.Equal(t, string(entity.ClientTypePremium), created.User.ClientType)
	assert.True(t, created.Active)
	assert.True(t, created.CurrentlyValid)

	view, err := f.uc.Resolve(ctx, "U1", "P1", nil)
	require.NoError(t, err)
	assert.True(t, view.HasOverride)
	assert.True(t, decimal.NewFromInt(80).Equal(view.FinalPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(view.DiscountPercent))
	assert.Equal(t, created.ID, view.SpecialPriceID)

	later := f.clock.Now().Add(11 * 24 * time.Hour)
	view, err = f.uc.Resolve(ctx, "U1", "P1", &later)
	require.NoError(t, err)
	assert.False(t, view.HasOverride)
	assert.True(t, decimal.NewFromInt(100).Equal(view.FinalPrice))

	// Otro usuario nunca ve el precio de U1.
	view, err = f.uc.Resolve(ctx, "U2", "P1", nil)
	require.NoError(t, err)
	assert.False(t, view.HasOverride)
}

// Escenario C: el par (usuario, producto) es único aunque el registro esté inactivo.
func TestCreate_Conflicto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.request("U1", "P1", 80))
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, f.request("U1", "P1", 70))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	off := false
	_, err = f.uc.Update(ctx, created.ID, dto.UpdateSpecialPriceRequest{Active: &off})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, f.request("U1", "P1", 70))
	assert.ErrorAs(t, err, &conflict)

	// El mismo usuario con otro producto no entra en conflicto.
	_, err = f.uc.Create(ctx, f.request("U1", "P2", 30))
	assert.NoError(t, err)
}

// Escenario D: precio por encima del original.
func TestCreate_TechoDePrecio(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), f.request("U1", "P1", 150))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Contains(t, vErr.Violations[0], "precio original")
	assert.Empty(t, f.events.Types(), "sin escritura no hay evento")
}

// Escenario E: el descuento se recalcula contra la instantánea.
func TestUpdate_RecalculaDescuento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.request("U1", "P1", 80))
	require.NoError(t, err)

	// El precio del catálogo cambia: la instantánea del registro no.
	require.NoError(t, f.products.Upsert(ctx, &entity.Product{ID: "P1", Name: "Aceite", Price: decimal.NewFromInt(50), Active: true}))

	f.clock.Advance(time.Minute)
	updated, err := f.uc.Update(ctx, created.ID, dto.UpdateSpecialPriceRequest{SpecialPrice: price(60)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(updated.DiscountPercent))
	assert.True(t, decimal.NewFromInt(100).Equal(updated.Product.OriginalPrice))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = f.uc.Update(ctx, created.ID, dto.UpdateSpecialPriceRequest{SpecialPrice: price(101)})
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)

	stored, err := f.uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(stored.SpecialPrice), "una actualización rechazada no persiste")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ReportaTodasLasViolaciones(t *testing.T) {
	f := newFixture()
	now := f.clock.Now()

	_, err := f.uc.Create(context.Background(), dto.CreateSpecialPriceRequest{
		User:         &dto.SpecialPriceUserInput{UserID: " ", Name: "", Email: "mal", ClientType: "oro"},
		Product:      &dto.SpecialPriceProductInput{ProductID: "P1"},
		SpecialPrice: price(0),
		Validity:     &dto.ValidityInput{Start: ts(now.Add(48 * time.Hour)), End: ts(now.Add(24 * time.Hour))},
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		"user.userId es requerido",
		"user.name es requerido",
		"user.email: formato de email inválido",
		"user.clientType: tipo de cliente inválido (VIP, Premium, Corporate, Wholesale, Employee)",
		"specialPrice debe ser mayor a 0",
		"validity.start debe ser anterior a validity.end",
	}, vErr.Violations)
}

func TestCreate_ValoresMalFormadosSeSumanALasViolaciones(t *testing.T) {
	f := newFixture()
	in := f.request("U1", "P1", 80)
	in.User.UserID = ""
	in.User.Name = ""
	in.SpecialPrice = &dto.Amount{Invalid: true}
	in.Validity.End = &dto.Timestamp{Invalid: true}
	in.Malformed = []string{"user.clientType: tipo de dato inválido"}

	_, err := f.uc.Create(context.Background(), in)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		"user.userId es requerido",
		"user.name es requerido",
		"user.clientType: tipo de dato inválido",
		"specialPrice debe ser numérico",
		"validity.end: fecha inválida (use YYYY-MM-DD o RFC 3339)",
	}, vErr.Violations)
	assert.Empty(t, f.events.Types())
}

// Los montos se guardan con centavos; más decimales se rechazan en vez de redondearse al persistir.
func TestCreateUpdate_PrecioConMasDeDosDecimales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := f.request("U1", "P1", 0)
	in.SpecialPrice = dto.NewAmount(decimal.RequireFromString("79.999"))
	_, err := f.uc.Create(ctx, in)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"specialPrice no puede tener más de 2 decimales"}, vErr.Violations)

	in.SpecialPrice = dto.NewAmount(decimal.RequireFromString("0.001"))
	_, err = f.uc.Create(ctx, in)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"specialPrice no puede tener más de 2 decimales"}, vErr.Violations)

	in.SpecialPrice = dto.NewAmount(decimal.RequireFromString("79.90"))
	created, err := f.uc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("79.9").Equal(created.SpecialPrice))

	_, err = f.uc.Update(ctx, created.ID, dto.UpdateSpecialPriceRequest{
		SpecialPrice: dto.NewAmount(decimal.RequireFromString("60.125")),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"specialPrice no puede tener más de 2 decimales"}, vErr.Violations)
}

// Un monto no positivo es violación aunque el producto no exista: NotFound solo sin otras violaciones.
func TestCreate_PrecioInvalidoConProductoInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), f.request("U1", "NOPE", 0))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"specialPrice debe ser mayor a 0"}, vErr.Violations)
}

func TestCreate_Requeridos(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), dto.CreateSpecialPriceRequest{})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations, "user es requerido")
	assert.Contains(t, vErr.Violations, "product es requerido")
	assert.Contains(t, vErr.Violations, "validity es requerido")
	assert.Contains(t, vErr.Violations, "specialPrice es requerido")
}

func TestCreate_NormalizaEntrada(t *testing.T) {
	f := newFixture()
	in := f.request("U1", "P1", 80)
	in.User.Email = "  Maria.Gomez@Example.COM "
	in.User.ClientType = "mayorista"
	in.Validity.Start = nil
	in.Reason = "  negociación anual  "

	out, err := f.uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "maria.gomez@example.com", out.User.Email)
	assert.Equal(t, string(entity.ClientTypeWholesale), out.User.ClientType)
	assert.Equal(t, "negociación anual", out.Reason)
	assert.Equal(t, f.clock.Now(), out.Validity.Start, "sin inicio la vigencia empieza al crear")
	assert.Equal(t, "Aceite", out.Product.Name)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), f.request("U1", "NOPE", 10))
	var nErr *domain.NotFoundError
	require.ErrorAs(t, err, &nErr)
	assert.Equal(t, "NOPE", nErr.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia, baja y eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ConcurrenteUnSoloExito(t *testing.T) {
	f := newFixture()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Create(context.Background(), f.request("U1", "P1", int64(50+i)))
			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.ConflictError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &conflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.request("U1", "P1", 80))
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, created.ID))

	var nErr *domain.NotFoundError
	assert.ErrorAs(t, f.uc.Delete(ctx, created.ID), &nErr)
	_, err = f.uc.GetByID(ctx, created.ID)
	assert.ErrorAs(t, err, &nErr)
	_, err = f.uc.Update(ctx, created.ID, dto.UpdateSpecialPriceRequest{SpecialPrice: price(10)})
	assert.ErrorAs(t, err, &nErr)

	// Tras la baja el par queda libre.
	_, err = f.uc.Create(ctx, f.request("U1", "P1", 70))
	assert.NoError(t, err)

	assert.Equal(t, []string{
		ports.EventSpecialPriceCreated,
		ports.EventSpecialPriceDeleted,
		ports.EventSpecialPriceCreated,
	}, f.events.Types())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker caído")

	out, err := f.uc.Create(context.Background(), f.request("U1", "P1", 80))
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckAndListings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.request("U1", "P2", 30))
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.uc.Create(ctx, f.request("U1", "P1", 80))
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.uc.Create(ctx, f.request("U2", "P1", 90))
	require.NoError(t, err)

	found, err := f.uc.Check(ctx, "U1", "P1", nil)
	require.NoError(t, err)
	assert.Equal(t, "U1", found.User.UserID)

	var nErr *domain.NotFoundError
	_, err = f.uc.Check(ctx, "U2", "P2", nil)
	assert.ErrorAs(t, err, &nErr)

	mine, err := f.uc.ListForUser(ctx, "U1", nil)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Aceite", mine[0].Product.Name, "orden por nombre de producto")
	assert.Equal(t, "Harina", mine[1].Product.Name)

	holders, err := f.uc.ListForProduct(ctx, "P1", nil)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "U1", holders[0].User.UserID, "orden de creación")
	assert.Equal(t, "U2", holders[1].User.UserID)

	items, page, err := f.uc.List(ctx, dto.SpecialPriceListRequest{UserID: "U1"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, "P1", items[0].Product.ProductID.String(), "más recientes primero")
}
