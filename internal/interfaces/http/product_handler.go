package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/application/usecase"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP del catálogo (solo lectura).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List godoc
// @Summary      Listar productos
// @Description  Con userId cada producto incluye su precio efectivo para ese usuario.
// @Tags         products
// @Produce      json
// @Param        page      query  int     false  "Página"  default(1)
// @Param        limit     query  int     false  "Límite"  default(10)
// @Param        category  query  string  false  "Categoría (coincidencia parcial)"
// @Param        search    query  string  false  "Texto en nombre o descripción"
// @Param        active    query  bool    false  "Filtrar por estado (por defecto solo activos)"
// @Param        all       query  bool    false  "Incluir inactivos"
// @Param        userId    query  string  false  "Usuario para aplicar precios especiales"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "active debe ser true o false")
	}
	in := dto.ProductListRequest{
		PageRequest: pageRequest(c),
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		Active:      active,
		All:         c.QueryBool("all", false),
		UserID:      c.Query("userId"),
	}
	items, page, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: items, Pagination: page, Message: "Productos obtenidos exitosamente"})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        userId  query  string  false  "Usuario para aplicar precios especiales"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := entity.NormalizeProductID(c.Params("id"))
	if id.IsZero() {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	out, err := h.uc.GetByID(c.UserContext(), id, c.Query("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Data: out, Message: "Producto obtenido exitosamente"})
}

// Search godoc
// @Summary      Buscar productos activos
// @Tags         products
// @Produce      json
// @Param        term    query  string  true   "Término de búsqueda"
// @Param        userId  query  string  false  "Usuario para aplicar precios especiales"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/search [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	term := c.Query("term")
	if strings.TrimSpace(term) == "" {
		term = c.Query("q")
	}
	items, err := h.uc.Search(c.UserContext(), term, c.Query("userId"))
	if err != nil {
		return writeError(c, err)
	}
	total := len(items)
	return c.JSON(dto.Envelope{Success: true, Data: items, Total: &total, Message: "Búsqueda completada"})
}

// Categories godoc
// @Summary      Categorías de productos activos
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.Envelope
// @Router       /api/products/categories [get]
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	total := len(cats)
	return c.JSON(dto.Envelope{Success: true, Data: cats, Total: &total, Message: "Categorías obtenidas exitosamente"})
}
