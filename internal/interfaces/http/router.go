package http

import (
	"github.com/gofiber/fiber/v2"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/application/fulfillment"
	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DeliveryUC    *appdelivery.UseCase
	LedgerUC      *ledger.UseCase
	FulfillmentUC *fulfillment.UseCase
	Carriers      repository.CarrierRepository
	CarrierStats  carrierStatsReader
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Deliveries (protegido)
	deliveries := protected.Group("/deliveries")
	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC)
	deliveries.Post("/", deliveryHandler.Schedule)
	deliveries.Get("/:id", deliveryHandler.GetByID)
	deliveries.Post("/:id/depart", deliveryHandler.MarkEnRoute)
	deliveries.Post("/:id/outcome", deliveryHandler.RecordOutcome)
	deliveries.Post("/:id/cancel", deliveryHandler.Cancel)

	// Sales: vista de entregas y reconciliación (protegido)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.DeliveryUC, deps.FulfillmentUC)
	sales.Get("/:id/deliveries", saleHandler.ListDeliveries)
	sales.Post("/:id/reconcile", saleHandler.Reconcile)

	// Carriers: directorio, cuenta corriente y estadísticas (protegido).
	// Los pagos quedan restringidos a admin.
	carriers := protected.Group("/carriers")
	carrierHandler := NewCarrierHandler(deps.LedgerUC, deps.Carriers, deps.CarrierStats)
	carriers.Get("/", carrierHandler.List)
	carriers.Get("/:id/balance", carrierHandler.Balance)
	carriers.Get("/:id/account", carrierHandler.Account)
	carriers.Get("/:id/stats", carrierHandler.Stats)
	carriers.Post("/:id/payments", RequireRole("admin"), carrierHandler.RecordPayment)
}
