package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	domledger "github.com/jcastano/entregas-api/internal/domain/ledger"
	"github.com/jcastano/entregas-api/internal/domain/repository"
	"github.com/jcastano/entregas-api/pkg/logger"
)

// Ensure UseCase implementa el puerto del orquestador de entregas.
var _ appdelivery.CarrierLedger = (*UseCase)(nil)

// UseCase mantiene el libro append-only del transportista: cada movimiento
// lleva el saldo antes y después, encadenado al movimiento anterior. El
// saldo actual es el balanceAfter del movimiento más reciente.
type UseCase struct {
	tx        TxRunner
	movements repository.CarrierMovementRepository
	carriers  repository.CarrierRepository
	log       *logger.Logger
	now       func() time.Time
	summaryN  int // movimientos a considerar en el resumen si no se pide otro valor
}

// NewUseCase construye el caso de uso. movements va atado al pool (solo
// lecturas); las escrituras pasan por el TxRunner serializado. summaryN
// fija cuántos movimientos entran al resumen de cuenta por defecto
// (<= 0 usa 50).
func NewUseCase(tx TxRunner, movements repository.CarrierMovementRepository, carriers repository.CarrierRepository, log *logger.Logger, summaryN int) *UseCase {
	if summaryN <= 0 {
		summaryN = 50
	}
	return &UseCase{tx: tx, movements: movements, carriers: carriers, log: log, now: time.Now, summaryN: summaryN}
}

// AppendInput datos para asentar un movimiento.
type AppendInput struct {
	CarrierID   string
	CarrierName string
	Kind        string

	DeliveryID   string
	DeliveryCode string
	SaleID       string
	SaleNumber   string
	ExpenseID    string

	CarrierCost     decimal.Decimal
	AmountCollected *decimal.Decimal
	PaymentAmount   *decimal.Decimal

	Notes string
}

// Append asienta un movimiento inmutable: lee el último saldo del
// transportista, calcula el movimiento neto según el tipo y escribe la
// nueva fila encadenada, todo dentro de la transacción serializada.
func (uc *UseCase) Append(ctx context.Context, in AppendInput, actor string) (*entity.CarrierMovement, error) {
	if in.CarrierID == "" {
		return nil, domain.ErrInvalidInput
	}

	collected := decimal.Zero
	if in.AmountCollected != nil {
		collected = *in.AmountCollected
	}
	payment := decimal.Zero
	if in.PaymentAmount != nil {
		payment = *in.PaymentAmount
	}
	net, err := domledger.NetMovement(in.Kind, in.CarrierCost, collected, payment)
	if err != nil {
		return nil, err
	}

	m := &entity.CarrierMovement{
		ID:              uuid.New().String(),
		CarrierID:       in.CarrierID,
		CarrierName:     in.CarrierName,
		Kind:            in.Kind,
		DeliveryID:      nilIfEmpty(in.DeliveryID),
		DeliveryCode:    nilIfEmpty(in.DeliveryCode),
		SaleID:          nilIfEmpty(in.SaleID),
		SaleNumber:      nilIfEmpty(in.SaleNumber),
		ExpenseID:       nilIfEmpty(in.ExpenseID),
		CarrierCost:     in.CarrierCost,
		AmountCollected: in.AmountCollected,
		PaymentAmount:   in.PaymentAmount,
		NetMovement:     net,
		Notes:           in.Notes,
		CreatedAt:       uc.now(),
		CreatedBy:       actor,
	}

	err = uc.tx.RunSerialized(ctx, in.CarrierID, func(movRepo repository.CarrierMovementRepository) error {
		latest, err := movRepo.GetLatestByCarrier(ctx, in.CarrierID)
		if err != nil {
			return err
		}
		before := decimal.Zero
		if latest != nil {
			before = latest.BalanceAfter
		}
		m.BalanceBefore = before
		m.BalanceAfter = before.Add(net)
		return movRepo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("carrier", in.CarrierID).
		Str("kind", in.Kind).
		Str("net", m.NetMovement.String()).
		Str("balance", m.BalanceAfter.String()).
		Msg("movimiento de transportista asentado")
	return m, nil
}

// AppendDeliveryMovement implementa el puerto CarrierLedger del
// orquestador de entregas. Devuelve el id del movimiento creado.
func (uc *UseCase) AppendDeliveryMovement(ctx context.Context, in appdelivery.LedgerMovementInput, actor string) (string, error) {
	m, err := uc.Append(ctx, AppendInput{
		CarrierID:       in.CarrierID,
		CarrierName:     in.CarrierName,
		Kind:            in.Kind,
		DeliveryID:      in.DeliveryID,
		DeliveryCode:    in.DeliveryCode,
		SaleID:          in.SaleID,
		SaleNumber:      in.SaleNumber,
		ExpenseID:       in.ExpenseID,
		CarrierCost:     in.CarrierCost,
		AmountCollected: in.AmountCollected,
	}, actor)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// RecordPayment asienta un pago hecho al transportista (kind
// carrier_payment, movimiento neto -amount).
func (uc *UseCase) RecordPayment(ctx context.Context, carrierID string, amount decimal.Decimal, notes, actor string) (*entity.CarrierMovement, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	carrier, err := uc.carriers.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	if carrier == nil {
		return nil, domain.ErrCarrierNotFound
	}
	return uc.Append(ctx, AppendInput{
		CarrierID:     carrierID,
		CarrierName:   carrier.Name,
		Kind:          entity.MovementKindCarrierPayment,
		PaymentAmount: &amount,
		Notes:         notes,
	}, actor)
}

// CurrentBalance devuelve el saldo actual del transportista: el
// balanceAfter del movimiento más reciente, o 0 si no hay movimientos.
func (uc *UseCase) CurrentBalance(ctx context.Context, carrierID string) (decimal.Decimal, error) {
	latest, err := uc.movements.GetLatestByCarrier(ctx, carrierID)
	if err != nil {
		return decimal.Zero, err
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}

// AccountSummary resumen de la cuenta del transportista: un fold sobre los
// últimos lastN movimientos, sin estado almacenado aparte.
type AccountSummary struct {
	CarrierID   string
	CarrierName string
	Balance     decimal.Decimal

	// Acumulados sobre los movimientos considerados
	TotalCost            decimal.Decimal // comisiones facturadas por entregas completadas
	TotalCollected       decimal.Decimal
	TotalPaid            decimal.Decimal
	SuccessfulDeliveries int
	FailedDeliveries     int

	Movements []*entity.CarrierMovement
}

// AccountSummary calcula el resumen de cuenta del transportista.
func (uc *UseCase) AccountSummary(ctx context.Context, carrierID string, lastN int) (*AccountSummary, error) {
	carrier, err := uc.carriers.GetByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	if carrier == nil {
		return nil, domain.ErrCarrierNotFound
	}
	if lastN <= 0 {
		lastN = uc.summaryN
	}

	movs, err := uc.movements.ListByCarrier(ctx, carrierID, lastN)
	if err != nil {
		return nil, err
	}

	s := &AccountSummary{
		CarrierID:      carrierID,
		CarrierName:    carrier.Name,
		Balance:        decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalCollected: decimal.Zero,
		TotalPaid:      decimal.Zero,
		Movements:      movs,
	}
	if len(movs) > 0 {
		// movs viene del más reciente al más antiguo
		s.Balance = movs[0].BalanceAfter
	}
	for _, m := range movs {
		switch m.Kind {
		case entity.MovementKindSuccessfulDelivery:
			s.SuccessfulDeliveries++
			s.TotalCost = s.TotalCost.Add(m.CarrierCost)
			if m.AmountCollected != nil {
				s.TotalCollected = s.TotalCollected.Add(*m.AmountCollected)
			}
		case entity.MovementKindFailedDelivery:
			s.FailedDeliveries++
		case entity.MovementKindCarrierPayment:
			if m.PaymentAmount != nil {
				s.TotalPaid = s.TotalPaid.Add(*m.PaymentAmount)
			}
		}
	}
	return s, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
