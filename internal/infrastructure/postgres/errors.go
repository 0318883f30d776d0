package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation 23514: el CHECK de la tabla rechazó la fila.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// dependencyErr clasifica un error del driver como falla de dependencia (timeout o falla dura).
func dependencyErr(op string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
	return &domain.DependencyError{Op: op, Timeout: timeout, Err: err}
}
