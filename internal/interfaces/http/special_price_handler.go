package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/application/usecase"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// SpecialPriceHandler maneja las peticiones HTTP de precios especiales.
type SpecialPriceHandler struct {
	uc    *usecase.SpecialPriceUseCase
	sheet *pricing.PriceSheetUseCase
}

// NewSpecialPriceHandler construye el handler. sheet puede ser nil (sin hoja PDF).
func NewSpecialPriceHandler(uc *usecase.SpecialPriceUseCase, sheet *pricing.PriceSheetUseCase) *SpecialPriceHandler {
	return &SpecialPriceHandler{uc: uc, sheet: sheet}
}

// List godoc
// @Summary      Listar precios especiales
// @Tags         special-prices
// @Produce      json
// @Param        page       query  int     false  "Página"  default(1)
// @Param        limit      query  int     false  "Límite"  default(10)
// @Param        userId     query  string  false  "Usuario"
// @Param        productId  query  string  false  "Producto"
// @Param        active     query  bool    false  "Estado"
// @Param        current    query  bool    false  "Solo vigentes ahora"
// @Success      200  {object}  dto.Envelope
// @Router       /api/special-prices [get]
func (h *SpecialPriceHandler) List(c *fiber.Ctx) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "active debe ser true o false")
	}
	current, err := queryBool(c, "current")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "current debe ser true o false")
	}
	items, page, err := h.uc.List(c.UserContext(), dto.SpecialPriceListRequest{
		PageRequest: pageRequest(c),
		UserID:      c.Query("userId"),
		ProductID:   c.Query("productId"),
		Active:      active,
		Current:     current,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: items, Pagination: page, Message: "Precios especiales obtenidos exitosamente"})
}

// Create godoc
// @Summary      Crear precio especial
// @Description  Valida la entrada completa; un único registro por usuario y producto.
// @Tags         special-prices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSpecialPriceRequest  true  "Precio especial"
// @Success      201  {object}  dto.Envelope
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/special-prices [post]
func (h *SpecialPriceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSpecialPriceRequest
	malformed, err := parseBody(c, &in)
	if err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	in.Malformed = malformed
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{Success: true, Data: out, Message: "Precio especial creado exitosamente"})
}

// GetByID godoc
// @Summary      Obtener precio especial por ID
// @Tags         special-prices
// @Produce      json
// @Param        id  path  string  true  "ID del precio especial"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/{id} [get]
func (h *SpecialPriceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: out, Message: "Precio especial obtenido exitosamente"})
}

// Update godoc
// @Summary      Actualizar precio especial
// @Tags         special-prices
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del precio especial"
// @Param        body  body  dto.UpdateSpecialPriceRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/{id} [put]
func (h *SpecialPriceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSpecialPriceRequest
	malformed, err := parseBody(c, &in)
	if err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	in.Malformed = malformed
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: out, Message: "Precio especial actualizado exitosamente"})
}

// Delete godoc
// @Summary      Eliminar precio especial
// @Tags         special-prices
// @Produce      json
// @Param        id  path  string  true  "ID del precio especial"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/{id} [delete]
func (h *SpecialPriceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Message: "Precio especial eliminado exitosamente"})
}

// Check godoc
// @Summary      Precio especial vigente de un usuario para un producto
// @Tags         special-prices
// @Produce      json
// @Param        userId     path   string  true   "Usuario"
// @Param        productId  path   string  true   "Producto"
// @Param        asOf       query  string  false  "Instante de evaluación"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/check/{userId}/{productId} [get]
func (h *SpecialPriceHandler) Check(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	out, err := h.uc.Check(c.UserContext(), c.Params("userId"), entity.NormalizeProductID(c.Params("productId")), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: out, Message: "Precio especial vigente encontrado"})
}

// Resolve godoc
// @Summary      Precio efectivo de un usuario para un producto
// @Tags         special-prices
// @Produce      json
// @Param        userId     path   string  true   "Usuario"
// @Param        productId  path   string  true   "Producto"
// @Param        asOf       query  string  false  "Instante de evaluación"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/resolve/{userId}/{productId} [get]
func (h *SpecialPriceHandler) Resolve(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	out, err := h.uc.Resolve(c.UserContext(), c.Params("userId"), entity.NormalizeProductID(c.Params("productId")), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: out, Message: "Precio efectivo calculado"})
}

// ListForUser godoc
// @Summary      Precios especiales vigentes de un usuario
// @Tags         special-prices
// @Produce      json
// @Param        userId  path   string  true   "Usuario"
// @Param        asOf    query  string  false  "Instante de evaluación"
// @Success      200  {object}  dto.Envelope
// @Router       /api/special-prices/user/{userId} [get]
func (h *SpecialPriceHandler) ListForUser(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	items, err := h.uc.ListForUser(c.UserContext(), c.Params("userId"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	total := len(items)
	return c.JSON(dto.Envelope{Success: true, Data: items, Total: &total, Message: "Precios especiales del usuario obtenidos"})
}

// PriceSheet godoc
// @Summary      Hoja PDF de precios especiales vigentes de un usuario
// @Tags         special-prices
// @Produce      application/pdf
// @Param        userId  path   string  true   "Usuario"
// @Param        asOf    query  string  false  "Instante de evaluación"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/special-prices/user/{userId}/price-sheet [get]
func (h *SpecialPriceHandler) PriceSheet(c *fiber.Ctx) error {
	if h.sheet == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "hoja de precios no disponible"})
	}
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	pdf, filename, err := h.sheet.Generate(c.UserContext(), c.Params("userId"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(filename, `"`, "")))
	return c.Send(pdf)
}

// ListForProduct godoc
// @Summary      Usuarios con precio especial vigente para un producto
// @Tags         special-prices
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        asOf       query  string  false  "Instante de evaluación"
// @Success      200  {object}  dto.Envelope
// @Router       /api/special-prices/product/{productId} [get]
func (h *SpecialPriceHandler) ListForProduct(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	items, err := h.uc.ListForProduct(c.UserContext(), entity.NormalizeProductID(c.Params("productId")), asOf)
	if err != nil {
		return writeError(c, err)
	}
	total := len(items)
	return c.JSON(dto.Envelope{Success: true, Data: items, Total: &total, Message: "Usuarios con precio especial obtenidos"})
}
