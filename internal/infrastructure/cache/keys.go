package cache

import "time"

const (
	// Producto por id: catalog:product:{product_id} -> JSON de entity.Product
	KeyProduct = "catalog:product:%s"

	// Categorías activas: catalog:categories -> JSON []string
	KeyCategories = "catalog:categories"
)

// DefaultCatalogTTL TTL cuando la configuración no indica uno.
var DefaultCatalogTTL = 5 * time.Minute
