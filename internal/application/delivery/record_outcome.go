package delivery

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/domain"
	deliveryrules "github.com/jcastano/entregas-api/internal/domain/delivery"
	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// OutcomeInput resultado de un intento de entrega.
type OutcomeInput struct {
	DeliveryID string
	Success    bool

	// Éxito
	DeliveredAt           *time.Time // nil = ahora
	PaymentCollected      *bool
	AmountCollected       *decimal.Decimal
	PaymentMethodReceived *string
	PhotoURL              *string
	SignatureURL          *string

	// Fallo
	Reschedule         bool
	NewScheduledAt     *time.Time // obligatorio si Reschedule
	FailureReason      string
	FailureDescription *string
}

// RecordOutcome registra el resultado de una entrega. La transición de
// estado se valida y persiste primero; los efectos posteriores
// (inventario, gasto, libro, métricas, reconciliación) son best-effort:
// un fallo en uno se registra en el log y no revierte el estado ni
// bloquea los pasos siguientes.
func (uc *UseCase) RecordOutcome(ctx context.Context, in OutcomeInput, actor string) (*entity.Delivery, error) {
	d, err := uc.GetByID(ctx, in.DeliveryID)
	if err != nil {
		return nil, err
	}
	if !deliveryrules.CanRecordOutcome(d.Status) {
		return nil, domain.ErrInvalidTransition
	}

	if in.Success {
		return uc.recordSuccess(ctx, d, in, actor)
	}
	return uc.recordFailure(ctx, d, in, actor)
}

// recordSuccess: secuencia completa de éxito.
//
//  1. estado delivered + hora de entrega + duración en ruta
//  2. confirmar venta de las unidades reservadas
//  3. crear el gasto de distribución (siempre, aun con costo 0)
//  4. asentar el movimiento successful_delivery en el libro
//  5. métricas del transportista
//  6. reconciliar el cumplimiento de la venta padre
func (uc *UseCase) recordSuccess(ctx context.Context, d *entity.Delivery, in OutcomeInput, actor string) (*entity.Delivery, error) {
	now := uc.now()
	deliveredAt := now
	if in.DeliveredAt != nil {
		deliveredAt = *in.DeliveredAt
	}

	d.Status = entity.DeliveryStatusDelivered
	d.DeliveredAt = &deliveredAt
	if d.DepartedAt != nil {
		minutes := int(deliveredAt.Sub(*d.DepartedAt).Minutes())
		d.DeliveryDurationMinutes = &minutes
	}
	d.PaymentCollected = in.PaymentCollected
	d.AmountCollected = in.AmountCollected
	d.PaymentMethodReceived = in.PaymentMethodReceived
	d.PhotoURL = in.PhotoURL
	d.SignatureURL = in.SignatureURL
	d.UpdatedAt = now
	d.UpdatedBy = actor

	if err := uc.deliveries.Update(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("delivery", d.Code).Str("actor", actor).Msg("entrega completada")

	// Desde aquí todo es best-effort: el estado delivered ya es autoritativo.

	if unitIDs := d.AllReservedUnitIDs(); len(unitIDs) > 0 {
		res, err := uc.units.ConfirmSale(ctx, unitIDs, d.SaleID, d.SaleNumber, d.SubtotalAmount, actor)
		if err != nil || res.Failed > 0 {
			uc.log.Error().Err(err).
				Str("delivery", d.Code).
				Int("confirmed", res.Succeeded).
				Int("failed", res.Failed).
				Msg("confirmación de unidades vendidas")
		}
	}

	// El gasto se crea siempre, incluso con costo 0, para la pista de auditoría.
	expenseID, err := uc.expenses.CreateDistributionExpense(ctx, DistributionExpenseInput{
		DeliveryID:   d.ID,
		DeliveryCode: d.Code,
		SaleID:       d.SaleID,
		SaleNumber:   d.SaleNumber,
		CarrierID:    d.CarrierID,
		CarrierName:  d.CarrierName,
		Cost:         d.CarrierCost,
		District:     d.District,
	}, actor)
	if err != nil {
		uc.log.Error().Err(err).Str("delivery", d.Code).Msg("crear gasto de distribución")
	} else {
		d.DistributionExpenseID = &expenseID
		if err := uc.deliveries.SetDistributionExpenseID(ctx, d.ID, expenseID); err != nil {
			uc.log.Error().Err(err).Str("delivery", d.Code).Msg("guardar id del gasto de distribución")
		}
	}

	if _, err := uc.ledger.AppendDeliveryMovement(ctx, LedgerMovementInput{
		CarrierID:       d.CarrierID,
		CarrierName:     d.CarrierName,
		Kind:            entity.MovementKindSuccessfulDelivery,
		DeliveryID:      d.ID,
		DeliveryCode:    d.Code,
		SaleID:          d.SaleID,
		SaleNumber:      d.SaleNumber,
		ExpenseID:       derefOrEmpty(d.DistributionExpenseID),
		CarrierCost:     d.CarrierCost,
		AmountCollected: d.AmountCollected,
	}, actor); err != nil {
		uc.log.Error().Err(err).Str("delivery", d.Code).Msg("asentar movimiento en libro de transportista")
	}

	duration := 0
	if d.DeliveryDurationMinutes != nil {
		duration = *d.DeliveryDurationMinutes
	}
	if err := uc.metrics.RecordDelivery(ctx, d.CarrierID, true, duration, d.CarrierCost, d.District); err != nil {
		uc.log.Error().Err(err).Str("delivery", d.Code).Msg("métricas del transportista")
	}

	if err := uc.reconciler.Reconcile(ctx, d.SaleID, actor); err != nil {
		uc.log.Error().Err(err).Str("sale", d.SaleNumber).Msg("reconciliar cumplimiento de la venta")
	}

	return d, nil
}

// recordFailure: estado failed o rescheduled, liberación de unidades solo
// si no se reprograma, movimiento de libro con costo 0 y métrica de fallo.
// No se reconcilia la venta: una entrega fallida aporta cero unidades
// entregadas de cualquier forma.
func (uc *UseCase) recordFailure(ctx context.Context, d *entity.Delivery, in OutcomeInput, actor string) (*entity.Delivery, error) {
	if !deliveryrules.ValidFailureReason(in.FailureReason) {
		return nil, domain.ErrInvalidInput
	}
	if in.Reschedule && in.NewScheduledAt == nil {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	d.Status = deliveryrules.OutcomeStatus(false, in.Reschedule)
	d.FailureReason = &in.FailureReason
	d.FailureDescription = in.FailureDescription
	if in.Reschedule {
		d.ScheduledAt = *in.NewScheduledAt
		// La reprogramación conserva la reserva y vuelve a esperar salida.
		d.DepartedAt = nil
	}
	d.UpdatedAt = now
	d.UpdatedBy = actor

	if err := uc.deliveries.Update(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("delivery", d.Code).
		Str("reason", in.FailureReason).
		Bool("reschedule", in.Reschedule).
		Str("actor", actor).
		Msg("entrega fallida")

	if !in.Reschedule {
		if unitIDs := d.AllReservedUnitIDs(); len(unitIDs) > 0 {
			res, err := uc.units.Release(ctx, unitIDs, "entrega fallida: "+in.FailureReason, actor)
			if err != nil || res.Failed > 0 {
				uc.log.Error().Err(err).
					Str("delivery", d.Code).
					Int("failed", res.Failed).
					Msg("liberación de unidades reservadas")
			}
		}
	}

	// Las entregas fallidas no se facturan: costo 0, movimiento neto 0.
	// Una reprogramación todavía no cierra el intento, así que no se asienta.
	if !in.Reschedule {
		if _, err := uc.ledger.AppendDeliveryMovement(ctx, LedgerMovementInput{
			CarrierID:    d.CarrierID,
			CarrierName:  d.CarrierName,
			Kind:         entity.MovementKindFailedDelivery,
			DeliveryID:   d.ID,
			DeliveryCode: d.Code,
			SaleID:       d.SaleID,
			SaleNumber:   d.SaleNumber,
			CarrierCost:  decimal.Zero,
		}, actor); err != nil {
			uc.log.Error().Err(err).Str("delivery", d.Code).Msg("asentar movimiento en libro de transportista")
		}
	}

	if err := uc.metrics.RecordDelivery(ctx, d.CarrierID, false, 0, decimal.Zero, d.District); err != nil {
		uc.log.Error().Err(err).Str("delivery", d.Code).Msg("métricas del transportista")
	}

	return d, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
