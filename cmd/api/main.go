package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/application/production"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
	inframetrics "github.com/jhoicas/bakery-ops/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/bakery-ops/internal/infrastructure/pdf"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/postgres"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/seed"
	"github.com/jhoicas/bakery-ops/internal/infrastructure/system"
	httpRouter "github.com/jhoicas/bakery-ops/internal/interfaces/http"
	"github.com/jhoicas/bakery-ops/pkg/config"
	"github.com/jhoicas/bakery-ops/pkg/logger"
)

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
		Bool("strict_transitions", cfg.Ledger.StrictTransitions).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	clock, ids := system.Clock{}, system.UUIDs{}

	invOpts := []appinventory.Option{appinventory.WithLogger(log)}
	woOpts := []appworkorder.Option{
		appworkorder.WithLogger(log),
		appworkorder.WithStrictTransitions(cfg.Ledger.StrictTransitions),
	}

	var seeded *seed.Seed
	if cfg.Ledger.SeedFile != "" {
		s, err := seed.Load(cfg.Ledger.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Ledger.SeedFile).Msg("cargar semilla")
		}
		invOpts = append(invOpts, appinventory.WithInitialState(s.Inventory))
		woOpts = append(woOpts, appworkorder.WithInitialState(s.WorkOrders))
		log.Info().
			Int("lots", len(s.Inventory.Lots)).
			Int("work_orders", len(s.WorkOrders.WorkOrders)).
			Msg("semilla cargada")
		seeded = s
	}

	// Diario de auditoría en PostgreSQL (opcional, mejor esfuerzo)
	if cfg.Ledger.JournalEnabled {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		journal := postgres.NewJournal(pool)
		if err := journal.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema del diario")
		}
		invOpts = append(invOpts, appinventory.WithJournal(journal))
		woOpts = append(woOpts, appworkorder.WithJournal(journal))
	}

	var metrics *inframetrics.Prometheus
	if cfg.Ledger.MetricsEnabled {
		metrics = inframetrics.NewPrometheus("bakery_ops", true)
		invOpts = append(invOpts, appinventory.WithMetrics(metrics))
		woOpts = append(woOpts, appworkorder.WithMetrics(metrics))
	}

	inventoryLedger := appinventory.NewLedger(clock, ids, invOpts...)
	workOrderLedger := appworkorder.NewLedger(clock, ids, woOpts...)

	traceUC := appinventory.NewTraceReportUseCase(inventoryLedger, infrapdf.NewLotTraceGenerator(clock.Now))
	catalog := appinventory.NewCatalog(inventoryLedger, nil, nil)
	if seeded != nil {
		catalog = appinventory.NewCatalog(inventoryLedger, seeded.SKUs, seeded.Locations)
	}
	consumeUC := production.NewConsumeRecipeUseCase(inventoryLedger, workOrderLedger, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bakery Ops API",
	}))

	deps := httpRouter.RouterDeps{
		ServiceName:   cfg.App.Name,
		Inventory:     inventoryLedger,
		WorkOrders:    workOrderLedger,
		TraceReport:   traceUC,
		Catalog:       catalog,
		ConsumeRecipe: consumeUC,
		JWTSecret:     cfg.JWT.Secret,
	}
	if metrics != nil {
		deps.MetricsHandler = metrics.Handler()
	}
	httpRouter.Router(app, deps)

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
