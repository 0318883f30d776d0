package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	"github.com/jhoicas/precios-especiales-api/internal/domain"
)

// writeError traduce los errores de dominio al cuerpo de error estándar.
func writeError(c *fiber.Ctx, err error) error {
	var (
		vErr *domain.ValidationError
		cErr *domain.ConflictError
		nErr *domain.NotFoundError
		dErr *domain.DependencyError
	)
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "datos inválidos", Errors: vErr.Violations,
		})
	case errors.As(err, &cErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "CONFLICT", Message: "ya existe un precio especial para este usuario y producto",
		})
	case errors.As(err, &nErr):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: nErr.Error()})
	case errors.As(err, &dErr):
		return dependencyFailure(c, err, dErr.Timeout)
	case errors.Is(err, context.DeadlineExceeded):
		return dependencyFailure(c, err, true)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: "error interno del servidor",
		})
	}
}

func dependencyFailure(c *fiber.Ctx, err error, timeout bool) error {
	code, msg := "DB_UNAVAILABLE", "almacenamiento no disponible"
	if timeout {
		code, msg = "DB_TIMEOUT", "el almacenamiento no respondió a tiempo"
	}
	log.Error().Err(err).Str("path", c.Path()).Str("code", code).Msg("falla de dependencia")
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// errorHandler respuestas de Fiber (ruta inexistente, método no permitido, pánico recuperado) con el mismo cuerpo.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	code := "INTERNAL"
	switch status {
	case fiber.StatusNotFound:
		code = "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case fiber.StatusTooManyRequests:
		code = "RATE_LIMITED"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		msg = "error interno del servidor"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
