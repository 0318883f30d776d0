package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
	"github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/application/usecase"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/cache"
	infrakafka "github.com/jhoicas/precios-especiales-api/internal/infrastructure/kafka"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/memory"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/mongodb"
	infrapdf "github.com/jhoicas/precios-especiales-api/internal/infrastructure/pdf"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/precios-especiales-api/internal/interfaces/http"
	"github.com/jhoicas/precios-especiales-api/pkg/config"
	"github.com/jhoicas/precios-especiales-api/pkg/logger"
)

// storage repositorios del driver elegido más su verificación de salud y cierre.
type storage struct {
	products repository.ProductRepository
	prices   repository.SpecialPriceRepository
	health   func(ctx context.Context) error
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("conexión al almacenamiento")
	}
	defer store.close()

	products := store.products
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			// La caché es opcional: sin Redis el catálogo se lee directo.
			log.Warn().Err(err).Msg("redis no disponible, catálogo sin caché")
		} else {
			defer rdb.Close()
			products = cache.NewCachedProductRepository(products, rdb, cfg.Redis.CatalogTTL)
			log.Info().Dur("ttl", cfg.Redis.CatalogTTL).Msg("caché de catálogo activa")
		}
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := infrakafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, 0)
		kp.Start()
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kp.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("cierre del publicador kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos activa")
	}

	resolver := pricing.NewResolver(products, store.prices, nil)
	productUC := usecase.NewProductUseCase(products, resolver)
	specialPriceUC := usecase.NewSpecialPriceUseCase(store.prices, products, resolver, publisher)
	priceSheetUC := pricing.NewPriceSheetUseCase(resolver, infrapdf.NewPriceSheetGenerator(cfg.App.Name))

	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:            cfg.App.Name,
		Storage:         cfg.Storage.Driver,
		CORSOrigin:      cfg.HTTP.CORSOrigin,
		RateLimitMax:    cfg.HTTP.RateLimitMax,
		RateLimitWindow: cfg.HTTP.RateLimitWindow,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		SwaggerFile:     "./docs/swagger.json",
		Logger:          log.Component("http").Zerolog(),
		HealthCheck:     store.health,
	}, httpRouter.RouterDeps{
		ProductUC:      productUC,
		SpecialPriceUC: specialPriceUC,
		PriceSheetUC:   priceSheetUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta el driver configurado y prepara esquema o índices.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		productRepo := mongodb.NewProductRepository(db, cfg.Mongo.ProductsCollection)
		priceRepo := mongodb.NewSpecialPriceRepository(db, cfg.Mongo.SpecialPricesCollection)
		if err := productRepo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		if err := priceRepo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storage{
			products: productRepo,
			prices:   priceRepo,
			health:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		return &storage{
			products: memory.NewProductRepo(),
			prices:   memory.NewSpecialPriceRepo(),
			close:    func() {},
		}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			products: postgres.NewProductRepository(pool),
			prices:   postgres.NewSpecialPriceRepository(pool),
			health:   pool.Ping,
			close:    pool.Close,
		}, nil
	}
}
