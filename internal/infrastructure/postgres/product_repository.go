package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, description, price, category, stock, active, COALESCE(sku, ''), image_url, created_at, updated_at`

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id.String())
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dependencyErr("get product", err)
	}
	return p, nil
}

// List lista productos con filtros y paginación, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, likePattern(filter.Category))
		conds = append(conds, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, dependencyErr("count products", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	list, err := r.queryProducts(ctx, "list products", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Search productos activos cuyo nombre, descripción o categoría contienen el término.
func (r *ProductRepo) Search(ctx context.Context, term string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE active AND (name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1)
		ORDER BY name, id`
	return r.queryProducts(ctx, "search products", query, likePattern(term))
}

// DistinctCategories categorías de productos activos, sin vacías y ordenadas.
func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT category FROM products WHERE active AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, dependencyErr("list categories", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, dependencyErr("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dependencyErr("list categories", err)
	}
	return out, nil
}

// Upsert inserta o actualiza por id (herramienta de carga de catálogo).
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category, stock, active, sku, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			category = EXCLUDED.category, stock = EXCLUDED.stock, active = EXCLUDED.active,
			sku = EXCLUDED.sku, image_url = EXCLUDED.image_url, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		p.ID.String(), p.Name, p.Description, p.Price, p.Category, p.Stock, p.Active,
		p.SKU, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert product %s: sku duplicado %q: %w", p.ID, p.SKU, err)
		}
		return dependencyErr("upsert product", err)
	}
	return nil
}

func (r *ProductRepo) queryProducts(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dependencyErr(op, err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dependencyErr(op, err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dependencyErr(op, err)
	}
	return list, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p  entity.Product
		id string
	)
	err := row.Scan(&id, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.Active,
		&p.SKU, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = entity.ProductID(id)
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern envuelve el término para ILIKE escapando los comodines.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
