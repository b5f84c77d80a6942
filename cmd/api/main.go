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

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/application/fulfillment"
	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jcastano/entregas-api/internal/interfaces/http"
	"github.com/jcastano/entregas-api/pkg/config"
	"github.com/jcastano/entregas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	deliveryRepo := postgres.NewDeliveryRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	carrierRepo := postgres.NewCarrierRepository(pool)
	movementRepo := postgres.NewCarrierMovementRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	unitGateway := postgres.NewInventoryUnitAdapter(pool, log)
	expenseAdapter := postgres.NewExpenseAdapter(pool, counterRepo)
	statsAdapter := postgres.NewCarrierStatsAdapter(pool)

	ledgerUC := ledger.NewUseCase(txRunner, movementRepo, carrierRepo, log, cfg.Ledger.SummaryMovements)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, log)
	deliveryUC := appdelivery.NewUseCase(
		deliveryRepo, saleRepo, carrierRepo, counterRepo,
		unitGateway, expenseAdapter, statsAdapter,
		ledgerUC, fulfillmentUC,
		log,
	)

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
		Title:    "Entregas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DeliveryUC:    deliveryUC,
		LedgerUC:      ledgerUC,
		FulfillmentUC: fulfillmentUC,
		Carriers:      carrierRepo,
		CarrierStats:  statsAdapter,
		JWTSecret:     cfg.JWT.Secret,
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
