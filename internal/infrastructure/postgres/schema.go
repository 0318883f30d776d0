package postgres

import (
	"context"
	"fmt"
)

// schemaStatements crea el catálogo y la tabla de precios especiales.
// La restricción única (user_id, product_id) es la que garantiza un solo registro por par.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(14,2) NOT NULL CHECK (price >= 0),
		category    TEXT NOT NULL DEFAULT '',
		stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		sku         TEXT UNIQUE,
		image_url   TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (lower(category))`,
	`CREATE TABLE IF NOT EXISTS special_prices (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		user_name        TEXT NOT NULL,
		user_email       TEXT NOT NULL,
		client_type      TEXT NOT NULL DEFAULT 'Premium',
		product_id       TEXT NOT NULL,
		product_name     TEXT NOT NULL,
		original_price   NUMERIC(14,2) NOT NULL,
		special_price    NUMERIC(14,2) NOT NULL,
		discount_percent NUMERIC(5,2) NOT NULL,
		valid_from       TIMESTAMPTZ NOT NULL,
		valid_until      TIMESTAMPTZ NOT NULL,
		active           BOOLEAN NOT NULL DEFAULT TRUE,
		reason           VARCHAR(200) NOT NULL DEFAULT '',
		created_by       TEXT NOT NULL DEFAULT 'System',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT special_prices_user_product_key UNIQUE (user_id, product_id),
		CONSTRAINT special_prices_price_check CHECK (special_price > 0 AND special_price <= original_price),
		CONSTRAINT special_prices_discount_check CHECK (discount_percent BETWEEN 0 AND 100),
		CONSTRAINT special_prices_validity_check CHECK (valid_from < valid_until)
	)`,
	`CREATE INDEX IF NOT EXISTS special_prices_product_idx ON special_prices (product_id)`,
	`CREATE INDEX IF NOT EXISTS special_prices_validity_idx ON special_prices (active, valid_from, valid_until)`,
}

// EnsureSchema aplica el esquema de forma idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema paso %d: %w", i+1, err)
		}
	}
	return nil
}
