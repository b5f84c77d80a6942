package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// CarrierPaymentRequest cuerpo para registrar un pago al transportista.
type CarrierPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// CarrierMovementResponse una fila del libro del transportista.
type CarrierMovementResponse struct {
	ID          string `json:"id"`
	CarrierID   string `json:"carrier_id"`
	CarrierName string `json:"carrier_name"`
	Kind        string `json:"kind"`

	DeliveryID   *string `json:"delivery_id,omitempty"`
	DeliveryCode *string `json:"delivery_code,omitempty"`
	SaleID       *string `json:"sale_id,omitempty"`
	SaleNumber   *string `json:"sale_number,omitempty"`
	ExpenseID    *string `json:"expense_id,omitempty"`

	CarrierCost     decimal.Decimal  `json:"carrier_cost"`
	AmountCollected *decimal.Decimal `json:"amount_collected,omitempty"`
	PaymentAmount   *decimal.Decimal `json:"payment_amount,omitempty"`

	BalanceBefore decimal.Decimal `json:"balance_before"`
	NetMovement   decimal.Decimal `json:"net_movement"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromCarrierMovement mapea la entidad a su representación externa.
func FromCarrierMovement(m *entity.CarrierMovement) CarrierMovementResponse {
	return CarrierMovementResponse{
		ID:              m.ID,
		CarrierID:       m.CarrierID,
		CarrierName:     m.CarrierName,
		Kind:            m.Kind,
		DeliveryID:      m.DeliveryID,
		DeliveryCode:    m.DeliveryCode,
		SaleID:          m.SaleID,
		SaleNumber:      m.SaleNumber,
		ExpenseID:       m.ExpenseID,
		CarrierCost:     m.CarrierCost,
		AmountCollected: m.AmountCollected,
		PaymentAmount:   m.PaymentAmount,
		BalanceBefore:   m.BalanceBefore,
		NetMovement:     m.NetMovement,
		BalanceAfter:    m.BalanceAfter,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

// CarrierAccountResponse resumen de cuenta del transportista.
type CarrierAccountResponse struct {
	CarrierID   string          `json:"carrier_id"`
	CarrierName string          `json:"carrier_name"`
	Balance     decimal.Decimal `json:"balance"`

	TotalCost            decimal.Decimal `json:"total_cost"`
	TotalCollected       decimal.Decimal `json:"total_collected"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
	SuccessfulDeliveries int             `json:"successful_deliveries"`
	FailedDeliveries     int             `json:"failed_deliveries"`

	Movements []CarrierMovementResponse `json:"movements"`
}

// FromAccountSummary mapea el resumen del caso de uso a su representación externa.
func FromAccountSummary(s *ledger.AccountSummary) CarrierAccountResponse {
	movs := make([]CarrierMovementResponse, len(s.Movements))
	for i, m := range s.Movements {
		movs[i] = FromCarrierMovement(m)
	}
	return CarrierAccountResponse{
		CarrierID:            s.CarrierID,
		CarrierName:          s.CarrierName,
		Balance:              s.Balance,
		TotalCost:            s.TotalCost,
		TotalCollected:       s.TotalCollected,
		TotalPaid:            s.TotalPaid,
		SuccessfulDeliveries: s.SuccessfulDeliveries,
		FailedDeliveries:     s.FailedDeliveries,
		Movements:            movs,
	}
}
