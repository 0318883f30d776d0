package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.SpecialPriceRepository = (*SpecialPriceRepo)(nil)

// SpecialPriceRepo implementación sobre la tabla special_prices.
// La unicidad (user_id, product_id) la impone la restricción special_prices_user_product_key.
type SpecialPriceRepo struct {
	q Querier
}

// NewSpecialPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpecialPriceRepository(q Querier) *SpecialPriceRepo {
	return &SpecialPriceRepo{q: q}
}

const specialPriceColumns = `id, user_id, user_name, user_email, client_type, product_id, product_name, original_price,
	special_price, discount_percent, valid_from, valid_until, active, reason, created_by, created_at, updated_at`

// InsertUnique inserta el registro; si el par ya existe devuelve *domain.ConflictError.
func (r *SpecialPriceRepo) InsertUnique(ctx context.Context, sp *entity.SpecialPrice) error {
	query := `
		INSERT INTO special_prices (` + specialPriceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		sp.ID, sp.User.UserID, sp.User.Name, sp.User.Email, string(sp.User.ClientType),
		sp.Product.ProductID.String(), sp.Product.Name, sp.Product.OriginalPrice,
		sp.SpecialPrice, sp.DiscountPercent, sp.Validity.Start, sp.Validity.End,
		sp.Active, sp.Reason, sp.CreatedBy, sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Key: domain.ConflictKey(sp.User.UserID, sp.Product.ProductID.String())}
		}
		if isCheckViolation(err) {
			return domain.NewValidationError([]string{"el registro no cumple las restricciones de precio o vigencia"})
		}
		return dependencyErr("insert special price", err)
	}
	return nil
}

// GetByID obtiene un registro por ID.
func (r *SpecialPriceRepo) GetByID(ctx context.Context, id string) (*entity.SpecialPrice, error) {
	row := r.q.QueryRow(ctx, `SELECT `+specialPriceColumns+` FROM special_prices WHERE id = $1`, id)
	return r.scanOne("get special price", row)
}

// FindByUserAndProduct registro del par, vigente o no.
func (r *SpecialPriceRepo) FindByUserAndProduct(ctx context.Context, userID string, productID entity.ProductID) (*entity.SpecialPrice, error) {
	row := r.q.QueryRow(ctx, `SELECT `+specialPriceColumns+` FROM special_prices WHERE user_id = $1 AND product_id = $2`,
		userID, productID.String())
	return r.scanOne("find special price", row)
}

// FindByUserAndProducts una sola consulta para varios productos del mismo usuario.
func (r *SpecialPriceRepo) FindByUserAndProducts(ctx context.Context, userID string, productIDs []entity.ProductID) ([]*entity.SpecialPrice, error) {
	if len(productIDs) == 0 {
		return []*entity.SpecialPrice{}, nil
	}
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}
	return r.queryMany(ctx, "find special prices batch",
		`SELECT `+specialPriceColumns+` FROM special_prices WHERE user_id = $1 AND product_id = ANY($2)`,
		userID, ids)
}

// Update guarda los campos mutables. user_id, product_id y la instantánea no cambian.
func (r *SpecialPriceRepo) Update(ctx context.Context, sp *entity.SpecialPrice) error {
	query := `
		UPDATE special_prices SET special_price = $2, discount_percent = $3, valid_from = $4, valid_until = $5,
			active = $6, reason = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		sp.ID, sp.SpecialPrice, sp.DiscountPercent, sp.Validity.Start, sp.Validity.End,
		sp.Active, sp.Reason, sp.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError([]string{"el registro no cumple las restricciones de precio o vigencia"})
		}
		return dependencyErr("update special price", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "precio especial", ID: sp.ID}
	}
	return nil
}

// Delete elimina el registro por ID.
func (r *SpecialPriceRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM special_prices WHERE id = $1`, id)
	if err != nil {
		return dependencyErr("delete special price", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "precio especial", ID: id}
	}
	return nil
}

// QueryByUser registros del usuario en orden de creación.
func (r *SpecialPriceRepo) QueryByUser(ctx context.Context, userID string, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	where, args := queryConditions("user_id", userID, q)
	return r.queryMany(ctx, "query special prices by user",
		`SELECT `+specialPriceColumns+` FROM special_prices WHERE `+where+` ORDER BY created_at`, args...)
}

// QueryByProduct registros del producto en orden de creación.
func (r *SpecialPriceRepo) QueryByProduct(ctx context.Context, productID entity.ProductID, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	where, args := queryConditions("product_id", productID.String(), q)
	return r.queryMany(ctx, "query special prices by product",
		`SELECT `+specialPriceColumns+` FROM special_prices WHERE `+where+` ORDER BY created_at`, args...)
}

// List listado administrativo, más recientes primero.
func (r *SpecialPriceRepo) List(ctx context.Context, f entity.SpecialPriceFilter) ([]*entity.SpecialPrice, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if !f.ProductID.IsZero() {
		add("product_id = $%d", f.ProductID.String())
	}
	if f.Active != nil {
		add("active = $%d", *f.Active)
	}
	if f.ValidAt != nil {
		add("active AND valid_from <= $%[1]d AND valid_until >= $%[1]d", *f.ValidAt)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM special_prices`+where, args...).Scan(&total); err != nil {
		return nil, 0, dependencyErr("count special prices", err)
	}
	query := `SELECT ` + specialPriceColumns + ` FROM special_prices` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	list, err := r.queryMany(ctx, "list special prices", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func queryConditions(column, value string, q entity.SpecialPriceQuery) (string, []any) {
	conds := []string{column + " = $1"}
	args := []any{value}
	if q.ActiveOnly {
		conds = append(conds, "active")
	}
	if q.ValidAt != nil {
		args = append(args, *q.ValidAt)
		conds = append(conds, "valid_from <= $2 AND valid_until >= $2")
	}
	return strings.Join(conds, " AND "), args
}

func (r *SpecialPriceRepo) scanOne(op string, row pgx.Row) (*entity.SpecialPrice, error) {
	sp, err := scanSpecialPrice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dependencyErr(op, err)
	}
	return sp, nil
}

func (r *SpecialPriceRepo) queryMany(ctx context.Context, op, query string, args ...any) ([]*entity.SpecialPrice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dependencyErr(op, err)
	}
	defer rows.Close()
	list := []*entity.SpecialPrice{}
	for rows.Next() {
		sp, err := scanSpecialPrice(rows)
		if err != nil {
			return nil, dependencyErr(op, err)
		}
		list = append(list, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, dependencyErr(op, err)
	}
	return list, nil
}

func scanSpecialPrice(row pgx.Row) (*entity.SpecialPrice, error) {
	var (
		sp         entity.SpecialPrice
		clientType string
		productID  string
		from, till time.Time
	)
	err := row.Scan(&sp.ID, &sp.User.UserID, &sp.User.Name, &sp.User.Email, &clientType,
		&productID, &sp.Product.Name, &sp.Product.OriginalPrice,
		&sp.SpecialPrice, &sp.DiscountPercent, &from, &till,
		&sp.Active, &sp.Reason, &sp.CreatedBy, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sp.User.ClientType = entity.ClientType(clientType)
	sp.Product.ProductID = entity.ProductID(productID)
	sp.Validity = entity.Validity{Start: from, End: till}
	return &sp, nil
}
