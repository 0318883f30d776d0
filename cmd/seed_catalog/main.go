// seed_catalog carga el catálogo de productos desde un CSV exportado por el sistema de inventario.
//
// Uso: go run ./cmd/seed_catalog [-encoding latin1] [ruta/productos.csv]
// Por defecto busca productos.csv en el directorio actual o en la raíz del módulo.
// Columnas (encabezado obligatorio, orden libre): id, nombre, descripcion, precio, categoria,
// stock, activo, sku, imagen. Acepta también los nombres en inglés (name, price, ...).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/precios-especiales-api/pkg/config"
	"github.com/jhoicas/precios-especiales-api/pkg/logger"
)

var columnAliases = map[string]string{
	"id": "id", "productid": "id", "product_id": "id",
	"nombre": "name", "name": "name",
	"descripcion": "description", "description": "description",
	"precio": "price", "price": "price",
	"categoria": "category", "category": "category",
	"stock": "stock",
	"activo": "active", "active": "active",
	"sku":    "sku",
	"imagen": "image", "image": "image", "imageurl": "image",
}

func main() {
	encoding := flag.String("encoding", "utf-8", "codificación del archivo: utf-8 o latin1")
	flag.Parse()

	csvPath := "productos.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	if _, err := os.Stat(csvPath); err != nil && !filepath.IsAbs(csvPath) {
		csvPath = filepath.Join(findModuleRoot(), csvPath)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed_catalog")

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	reader, err := decodeReader(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	now := time.Now().UTC()
	products, err := parseCatalog(reader, now)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("leer catálogo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	load := func(repo repository.ProductRepository) error {
		for _, p := range products {
			if err := repo.Upsert(ctx, p); err != nil {
				return fmt.Errorf("producto %s: %w", p.ID, err)
			}
		}
		return nil
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema")
		}
		err = postgres.NewTxRunner(pool).RunCatalog(ctx, load)
		if err != nil {
			log.Fatal().Err(err).Msg("carga de catálogo")
		}
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MongoDB")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo := mongodb.NewProductRepository(client.Database(cfg.Mongo.Database), cfg.Mongo.ProductsCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("índices")
		}
		if err := load(repo); err != nil {
			log.Fatal().Err(err).Msg("carga de catálogo")
		}
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("el almacenamiento en memoria no admite carga de catálogo")
	}

	log.Info().Int("productos", len(products)).Str("path", csvPath).Msg("catálogo cargado")
}

// decodeReader convierte la entrada a UTF-8. Las exportaciones de hoja de cálculo suelen venir en ISO-8859-1.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %q", encoding)
	}
}

// parseCatalog lee el CSV completo. Una fila inválida aborta la carga indicando la línea.
func parseCatalog(r io.Reader, now time.Time) ([]*entity.Product, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[name] = i
		}
	}
	for _, required := range []string{"id", "name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var out []*entity.Product
	seen := make(map[entity.ProductID]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		p := &entity.Product{
			ID:          entity.NormalizeProductID(field("id")),
			Name:        field("name"),
			Description: field("description"),
			Category:    field("category"),
			SKU:         field("sku"),
			ImageURL:    field("image"),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if p.ID.IsZero() || p.Name == "" {
			return nil, fmt.Errorf("línea %d: id y nombre son obligatorios", line)
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("línea %d: producto %s repetido (línea %d)", line, p.ID, prev)
		}
		seen[p.ID] = line

		p.Price, err = decimal.NewFromString(strings.ReplaceAll(field("price"), ",", "."))
		if err != nil || p.Price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio inválido %q", line, field("price"))
		}
		if s := field("stock"); s != "" {
			if p.Stock, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("línea %d: stock inválido %q", line, s)
			}
		}
		if s := field("active"); s != "" {
			if p.Active, err = parseActive(s); err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func parseActive(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "si", "sí", "s", "activo":
		return true, nil
	case "0", "false", "no", "n", "inactivo":
		return false, nil
	}
	return false, fmt.Errorf("valor de activo inválido %q", s)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
