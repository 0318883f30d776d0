package http

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
)

// AppOptions configuración del servidor HTTP.
type AppOptions struct {
	Name            string
	Storage         string
	CORSOrigin      string
	RateLimitMax    int // <= 0 desactiva el limitador
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	SwaggerFile     string // vacío o inexistente = sin /docs
	Logger          zerolog.Logger
	// HealthCheck verifica el almacenamiento; nil = siempre sano.
	HealthCheck func(ctx context.Context) error
}

// NewApp construye la aplicación Fiber con middlewares, /health, /docs y las rutas de la API.
func NewApp(opts AppOptions, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		UnescapePath: true,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(opts.Logger))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: nonEmptyOr(opts.CORSOrigin, "*"),
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete}, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	if opts.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: opts.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
					Code: "RATE_LIMITED", Message: "demasiadas solicitudes, intente más tarde",
				})
			},
		}))
	}

	// Swagger UI: http://localhost:<port>/docs
	if opts.SwaggerFile != "" {
		if _, err := os.Stat(opts.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: opts.SwaggerFile,
				Path:     "docs",
				Title:    "API Precios Especiales",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "ok", fiber.StatusOK
		if opts.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := opts.HealthCheck(ctx); err != nil {
				status, code = "degraded", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"service":   opts.Name,
			"storage":   opts.Storage,
			"timestamp": time.Now().UTC(),
		})
	})

	app.Use("/api", StorageTimeout(opts.RequestTimeout))
	Router(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: "ruta no encontrada: " + c.Method() + " " + c.Path(),
		})
	})
	return app
}

func nonEmptyOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
