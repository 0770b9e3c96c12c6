package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/catalog"
	kafkanotifier "github.com/jhoicas/stock-allocation-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-allocation-api/internal/interfaces/http"
	"github.com/jhoicas/stock-allocation-api/internal/tracing"
	"github.com/jhoicas/stock-allocation-api/internal/worker"
	"github.com/jhoicas/stock-allocation-api/pkg/config"
	"github.com/jhoicas/stock-allocation-api/pkg/logger"
)

const notifyTimeout = 10 * time.Second

// backend almacenamiento elegido por STORE_DRIVER.
type backend struct {
	tx    inventory.TxRunner
	reads repository.Repositories
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	store, err := openBackend(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	promMetrics := metrics.NewPrometheus(prometheus.DefaultRegisterer)

	invCfg := inventory.Config{
		ReservationTTL: cfg.Inventory.ReservationTTL,
		LocationID:     cfg.Inventory.DefaultLocation,
	}
	publisher := outbox.NewPublisher(cfg.Outbox.MaxRetries, nil)
	reservationUC := inventory.NewReservationUseCase(store.tx, store.reads, publisher, promMetrics, log.Zerolog(), invCfg)
	frameUC := inventory.NewFrameAllocationUseCase(store.tx, promMetrics, log.Zerolog(), invCfg)
	reconciliationUC := inventory.NewReconciliationUseCase(store.reads, promMetrics, log.Zerolog(), nil)

	notifier, closeNotifier := newNotifier(cfg, log.Zerolog())
	defer closeNotifier()

	registry, err := outbox.NewRegistry(
		outbox.NewOrderPlacedHandler(frameUC),
		outbox.NewStockReplenishedHandler(frameUC),
		outbox.NewOrderConfirmedHandler(notifier, notifyTimeout, log.Zerolog()),
		outbox.NewAuditHandler(store.reads.AuditLogs(), log.Zerolog(), nil),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar handlers de outbox")
	}
	dispatcher := outbox.NewDispatcher(store.reads.Outbox(), registry, promMetrics, log.Zerolog(), cfg.Outbox.RetryBackoff, nil)
	poller := outbox.NewPoller(store.reads.Outbox(), dispatcher, promMetrics, log.Zerolog(), outbox.PollerConfig{
		BatchSize:  cfg.Outbox.BatchSize,
		StaleAfter: cfg.Outbox.StaleAfter,
	}, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Allocation API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reservations: reservationUC,
		Frames:       frameUC,
		OutboxAdmin:  outbox.NewAdminService(store.reads.Outbox(), nil),
		Gatherer:     prometheus.DefaultGatherer,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
	})

	workers := []*worker.Periodic{
		worker.NewPeriodic("outbox_poller", cfg.Outbox.PollInterval, func(ctx context.Context) error {
			_, err := poller.Tick(ctx)
			return err
		}, log.Zerolog(), worker.RunImmediately()),
	}
	if cfg.Inventory.SweepEnabled {
		workers = append(workers, worker.NewPeriodic("reservation_sweep", cfg.Inventory.SweepInterval, func(ctx context.Context) error {
			_, err := reservationUC.SweepExpired(ctx)
			return err
		}, log.Zerolog()))
	}
	if cfg.Reconciliation.Enabled {
		workers = append(workers, worker.NewPeriodic("reconciliation", cfg.Reconciliation.Interval, func(ctx context.Context) error {
			_, err := reconciliationUC.Run(ctx)
			return err
		}, log.Zerolog()))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error { return w.Start(gctx) })
	}
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("apagado con error")
	}

	tracingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(tracingCtx); err != nil {
		log.Error().Err(err).Msg("apagado del tracer")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (backend, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		n, err := seedMemory(store, cfg)
		if err != nil {
			return backend{}, err
		}
		log.Warn().Int("products", n).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return backend{tx: store, reads: store.Repositories(), close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return backend{}, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return backend{}, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return backend{
		tx:    postgres.NewTxRunner(pool),
		reads: postgres.NewRepositories(pool),
		close: pool.Close,
	}, nil
}

// seedMemory carga CATALOG_FILE o, sin archivo, un catálogo demo de un producto REAL y uno FRAME.
func seedMemory(store *memory.Store, cfg *config.Config) (int, error) {
	entries := []catalog.Entry{
		{ProductID: 1, Name: "Producto demo", AllocationType: entity.AllocationTypeReal, AllocatableQty: 100},
		{ProductID: 2, Name: "Preventa demo", AllocationType: entity.AllocationTypeFrame, AllocatableQty: 50, FrameLimitQty: 20},
	}
	if cfg.App.CatalogFile != "" {
		f, err := os.Open(cfg.App.CatalogFile)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		if entries, err = catalog.Parse(f, cfg.App.CatalogEnc); err != nil {
			return 0, err
		}
	}
	for _, e := range entries {
		store.PutProduct(&entity.Product{ID: e.ProductID, Name: e.Name, AllocationType: e.AllocationType},
			cfg.Inventory.DefaultLocation, e.AllocatableQty)
		if e.FrameLimitQty > 0 {
			store.PutSalesLimit(&entity.SalesLimit{ProductID: e.ProductID, FrameLimitQty: e.FrameLimitQty})
		}
	}
	return len(entries), nil
}

// newNotifier Kafka si hay brokers; si no, notificador de log.
func newNotifier(cfg *config.Config, log zerolog.Logger) (ports.Notifier, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return kafkanotifier.NewLogNotifier(log), func() {}
	}
	n := kafkanotifier.NewNotifier(kafkanotifier.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic), log)
	return n, func() {
		if err := n.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar writer kafka")
		}
	}
}
