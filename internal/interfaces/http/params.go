package http

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
)

// queryBool nil si el parámetro no viene.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// queryAsOf instante de evaluación opcional (?asOf=2025-06-01 o RFC 3339).
func queryAsOf(c *fiber.Ctx) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query("asOf"))
	if raw == "" {
		return nil, nil
	}
	t, err := dto.ParseTimestamp(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pageRequest(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 10)}
	p.DefaultPage()
	return p
}

// parseBody decodifica el cuerpo JSON en out. Un campo con tipo incompatible (por ejemplo un número
// donde se espera texto) no es error: se devuelve como violación para informarla junto con las demás.
// Solo un cuerpo que no es JSON válido devuelve error.
func parseBody(c *fiber.Ctx, out interface{}) ([]string, error) {
	err := c.BodyParser(out)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return nil, err
		}
		return []string{field + ": tipo de dato inválido"}, nil
	}
	return nil, err
}
