package delivery

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayResult cuántas unidades procesó el gateway de inventario y
// cuántas fallaron. Los fallos parciales no abortan la entrega.
type GatewayResult struct {
	Succeeded int
	Failed    int
}

// InventoryUnitGateway confirma la venta de unidades reservadas o las
// devuelve a stock. Colaborador externo: el ciclo de vida completo de la
// unidad pertenece al módulo de inventario.
type InventoryUnitGateway interface {
	// ConfirmSale pasa las unidades de reserved a sold, anotando la venta
	// y el monto. Devuelve el conteo por unidad; nunca revierte las ya
	// confirmadas.
	ConfirmSale(ctx context.Context, unitIDs []string, saleID, saleNumber string, amount decimal.Decimal, actor string) (GatewayResult, error)
	// Release devuelve las unidades de reserved a available con un motivo.
	Release(ctx context.Context, unitIDs []string, reason, actor string) (GatewayResult, error)
}

// DistributionExpenseInput datos del gasto de distribución de una entrega.
type DistributionExpenseInput struct {
	DeliveryID   string
	DeliveryCode string
	SaleID       string
	SaleNumber   string
	CarrierID    string
	CarrierName  string
	Cost         decimal.Decimal
	District     string
}

// ExpenseRecorder registra el gasto de distribución ("GD") de una entrega
// completada y devuelve su id.
type ExpenseRecorder interface {
	CreateDistributionExpense(ctx context.Context, in DistributionExpenseInput, actor string) (string, error)
}

// CarrierMetricsTracker acumula estadísticas de desempeño por transportista.
type CarrierMetricsTracker interface {
	RecordDelivery(ctx context.Context, carrierID string, success bool, durationMinutes int, cost decimal.Decimal, district string) error
}

// LedgerMovementInput datos para asentar un movimiento de entrega en el
// libro del transportista.
type LedgerMovementInput struct {
	CarrierID       string
	CarrierName     string
	Kind            string // successful_delivery | failed_delivery
	DeliveryID      string
	DeliveryCode    string
	SaleID          string
	SaleNumber      string
	ExpenseID       string
	CarrierCost     decimal.Decimal
	AmountCollected *decimal.Decimal
}

// CarrierLedger asienta movimientos de entregas en el libro del
// transportista. Devuelve el id del movimiento creado.
type CarrierLedger interface {
	AppendDeliveryMovement(ctx context.Context, in LedgerMovementInput, actor string) (string, error)
}

// Reconciler recalcula el estado de cumplimiento de la venta padre a
// partir de sus entregas.
type Reconciler interface {
	Reconcile(ctx context.Context, saleID, actor string) error
}
