package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *usecase.ProductUseCase
	SpecialPriceUC *usecase.SpecialPriceUseCase
	PriceSheetUC   *pricing.PriceSheetUseCase
}

// Router registra las rutas de la API. Las rutas con segmentos fijos van antes que /:id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/categories", productHandler.Categories)
	products.Get("/search", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)

	prices := api.Group("/special-prices")
	priceHandler := NewSpecialPriceHandler(deps.SpecialPriceUC, deps.PriceSheetUC)
	prices.Get("/", priceHandler.List)
	prices.Post("/", priceHandler.Create)
	prices.Get("/check/:userId/:productId", priceHandler.Check)
	prices.Get("/resolve/:userId/:productId", priceHandler.Resolve)
	prices.Get("/user/:userId/price-sheet", priceHandler.PriceSheet)
	prices.Get("/user/:userId", priceHandler.ListForUser)
	prices.Get("/product/:productId", priceHandler.ListForProduct)
	prices.Get("/:id", priceHandler.GetByID)
	prices.Put("/:id", priceHandler.Update)
	prices.Delete("/:id", priceHandler.Delete)
}
