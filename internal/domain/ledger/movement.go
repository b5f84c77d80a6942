// Package ledger contiene la aritmética pura del libro de transportistas:
// el movimiento neto de saldo según el tipo de operación. Convención de
// signo: saldo positivo = se le debe al transportista.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// NetMovement calcula el movimiento neto de saldo según el tipo:
//
//	successful_delivery: carrierCost - amountCollected
//	failed_delivery:     0 (las entregas fallidas no se facturan)
//	carrier_payment:     -paymentAmount
func NetMovement(kind string, carrierCost, amountCollected, paymentAmount decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case entity.MovementKindSuccessfulDelivery:
		return carrierCost.Sub(amountCollected), nil
	case entity.MovementKindFailedDelivery:
		return decimal.Zero, nil
	case entity.MovementKindCarrierPayment:
		return paymentAmount.Neg(), nil
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}
}

// Chained verifica el invariante de encadenamiento de un movimiento:
// balanceAfter == balanceBefore + netMovement.
func Chained(m *entity.CarrierMovement) bool {
	return m.BalanceAfter.Equal(m.BalanceBefore.Add(m.NetMovement))
}
