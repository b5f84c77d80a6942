// Package fulfillment reconcilia el estado de cumplimiento de una venta a
// partir del conjunto de sus entregas. Idempotente: re-ejecutarlo sobre
// una venta sin cambios no produce escrituras adicionales.
package fulfillment

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
	"github.com/jcastano/entregas-api/pkg/logger"
)

// TxRunner ejecuta fn en una transacción con la fila de la venta bloqueada
// (SELECT FOR UPDATE vía saleRepo.GetForUpdate), para que dos
// reconciliaciones concurrentes de la misma venta no se pisen.
type TxRunner interface {
	Run(ctx context.Context, fn func(saleRepo repository.SaleRepository, deliveryRepo repository.DeliveryRepository) error) error
}

// UseCase recalcula el estado de cumplimiento de la venta padre.
type UseCase struct {
	tx  TxRunner
	log *logger.Logger
}

// NewUseCase construye el agregador.
func NewUseCase(tx TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, log: log}
}

// Reconcile recalcula la cantidad entregada de la venta (suma de itemCount
// de las entregas en estado delivered) y actualiza su estado solo si el
// objetivo difiere del actual:
//
//	entregado >= total      -> delivered
//	0 < entregado < total   -> in_delivery
//	entregado == 0          -> sin cambio
func (uc *UseCase) Reconcile(ctx context.Context, saleID, actor string) error {
	return uc.tx.Run(ctx, func(saleRepo repository.SaleRepository, deliveryRepo repository.DeliveryRepository) error {
		sale, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}

		deliveries, err := deliveryRepo.GetBySaleID(ctx, saleID)
		if err != nil {
			return err
		}

		delivered := 0
		for _, d := range deliveries {
			if d.Status == entity.DeliveryStatusDelivered {
				delivered += d.ItemCount
			}
		}

		target := TargetStatus(sale.TotalQuantity(), delivered)
		if target == "" || target == sale.Status {
			return nil
		}

		if err := saleRepo.UpdateStatus(ctx, saleID, target, actor); err != nil {
			return err
		}
		uc.log.Info().
			Str("sale", sale.Number).
			Int("delivered", delivered).
			Int("total", sale.TotalQuantity()).
			Str("status", target).
			Str("actor", actor).
			Msg("cumplimiento de venta reconciliado")
		return nil
	})
}

// TargetStatus decide el estado objetivo de la venta. Cadena vacía = dejar
// el estado como está.
func TargetStatus(totalQuantity, deliveredQuantity int) string {
	switch {
	case totalQuantity > 0 && deliveredQuantity >= totalQuantity:
		return entity.SaleStatusDelivered
	case deliveredQuantity > 0:
		return entity.SaleStatusInDelivery
	default:
		return ""
	}
}
