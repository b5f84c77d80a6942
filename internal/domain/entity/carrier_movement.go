package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de transportistas.
const (
	MovementKindSuccessfulDelivery = "successful_delivery" // entrega completada
	MovementKindFailedDelivery     = "failed_delivery"     // entrega fallida (no se factura)
	MovementKindCarrierPayment     = "carrier_payment"     // pago al transportista
)

// CarrierMovement es una fila inmutable del libro del transportista.
// Convención de signo: saldo positivo = se le debe al transportista.
// netMovement = carrierCost - amountCollected en entrega exitosa (0 en fallida),
// netMovement = -paymentAmount en un pago al transportista.
// El libro es append-only: el saldo actual es el BalanceAfter del movimiento
// más reciente del transportista.
type CarrierMovement struct {
	ID          string
	CarrierID   string
	CarrierName string
	Kind        string

	// Vínculos al origen del movimiento
	DeliveryID   *string
	DeliveryCode *string
	SaleID       *string
	SaleNumber   *string
	ExpenseID    *string

	CarrierCost     decimal.Decimal
	AmountCollected *decimal.Decimal
	PaymentAmount   *decimal.Decimal

	BalanceBefore decimal.Decimal
	NetMovement   decimal.Decimal
	BalanceAfter  decimal.Decimal // BalanceBefore + NetMovement

	Notes string

	CreatedAt time.Time
	CreatedBy string // UserID
}
