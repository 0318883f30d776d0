package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrDependency   = errors.New("dependencia no disponible")
)

// ValidationError reúne todas las restricciones violadas por una entrada (nunca solo la primera).
type ValidationError struct {
	Violations []string
}

// NewValidationError construye el error; devuelve nil si no hay violaciones.
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(e.Violations, "; "))
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConflictError indica que la clave única (usuario, producto) ya está ocupada.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Key)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError identifica el recurso que no existe (registro o producto referenciado).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DependencyError envuelve fallas del almacenamiento o del catálogo.
// Timeout distingue un vencimiento de plazo de una falla dura.
type DependencyError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

func (e *DependencyError) Unwrap() error { return e.Err }

// ConflictKey construye la clave compuesta usada en los conflictos de unicidad.
func ConflictKey(userID, productID string) string {
	return userID + "/" + productID
}
