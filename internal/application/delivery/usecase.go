package delivery

import (
	"context"
	"time"

	"github.com/jcastano/entregas-api/internal/domain"
	deliveryrules "github.com/jcastano/entregas-api/internal/domain/delivery"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
	"github.com/jcastano/entregas-api/pkg/logger"
)

// UseCase orquesta el ciclo de vida de una entrega: valida la transición,
// persiste el nuevo estado y ejecuta la secuencia de efectos secundarios
// (inventario, gasto, libro del transportista, métricas, reconciliación).
//
// Diseño deliberadamente no transaccional entre colecciones: el estado
// persistido de la entrega es autoritativo una vez escrito; cada efecto
// posterior es best-effort y sus fallos solo se registran en el log.
type UseCase struct {
	deliveries repository.DeliveryRepository
	sales      repository.SaleRepository
	carriers   repository.CarrierRepository
	counters   repository.CounterRepository
	units      InventoryUnitGateway
	expenses   ExpenseRecorder
	metrics    CarrierMetricsTracker
	ledger     CarrierLedger
	reconciler Reconciler
	log        *logger.Logger
	now        func() time.Time
}

// NewUseCase construye el orquestador con todos sus colaboradores.
func NewUseCase(
	deliveries repository.DeliveryRepository,
	sales repository.SaleRepository,
	carriers repository.CarrierRepository,
	counters repository.CounterRepository,
	units InventoryUnitGateway,
	expenses ExpenseRecorder,
	metrics CarrierMetricsTracker,
	ledger CarrierLedger,
	reconciler Reconciler,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		deliveries: deliveries,
		sales:      sales,
		carriers:   carriers,
		counters:   counters,
		units:      units,
		expenses:   expenses,
		metrics:    metrics,
		ledger:     ledger,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

// GetByID devuelve una entrega completa. domain.ErrNotFound si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	d, err := uc.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// ListBySale devuelve las entregas de una venta.
func (uc *UseCase) ListBySale(ctx context.Context, saleID string) ([]*entity.Delivery, error) {
	return uc.deliveries.GetBySaleID(ctx, saleID)
}

// MarkEnRoute pasa la entrega de scheduled a en_route y registra la hora
// de salida.
func (uc *UseCase) MarkEnRoute(ctx context.Context, id, actor string) (*entity.Delivery, error) {
	d, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deliveryrules.CanMarkEnRoute(d.Status) {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now()
	d.Status = entity.DeliveryStatusEnRoute
	d.DepartedAt = &now
	d.UpdatedAt = now
	d.UpdatedBy = actor
	if err := uc.deliveries.Update(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("delivery", d.Code).Str("actor", actor).Msg("entrega en ruta")
	return d, nil
}

// Cancel cancela la entrega desde cualquier estado no terminal y guarda el
// motivo. Libera las unidades reservadas (best-effort): una entrega
// cancelada no va a reclamar inventario.
func (uc *UseCase) Cancel(ctx context.Context, id, reason, actor string) (*entity.Delivery, error) {
	d, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deliveryrules.CanCancel(d.Status) {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now()
	d.Status = entity.DeliveryStatusCancelled
	d.CancelReason = &reason
	d.UpdatedAt = now
	d.UpdatedBy = actor
	if err := uc.deliveries.Update(ctx, d); err != nil {
		return nil, err
	}

	if unitIDs := d.AllReservedUnitIDs(); len(unitIDs) > 0 {
		res, err := uc.units.Release(ctx, unitIDs, "entrega cancelada: "+reason, actor)
		if err != nil || res.Failed > 0 {
			uc.log.Error().Err(err).
				Str("delivery", d.Code).
				Int("failed", res.Failed).
				Msg("liberación de unidades al cancelar")
		}
	}

	uc.log.Info().Str("delivery", d.Code).Str("reason", reason).Str("actor", actor).Msg("entrega cancelada")
	return d, nil
}
