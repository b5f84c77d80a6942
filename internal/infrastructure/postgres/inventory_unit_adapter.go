package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/pkg/logger"
)

var _ appdelivery.InventoryUnitGateway = (*InventoryUnitAdapter)(nil)

// InventoryUnitAdapter pasa unidades de inventario entre estados por cuenta
// del módulo de entregas. Cada unidad se actualiza por separado con un
// WHERE sobre el estado actual: una unidad que otro proceso ya movió no se
// pisa, solo se cuenta como fallida.
type InventoryUnitAdapter struct {
	q   Querier
	log *logger.Logger
}

// NewInventoryUnitAdapter construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryUnitAdapter(q Querier, log *logger.Logger) *InventoryUnitAdapter {
	return &InventoryUnitAdapter{q: q, log: log}
}

// ConfirmSale pasa las unidades de reserved a sold, anotando venta y monto.
// Las unidades ya confirmadas no se revierten si otra falla.
func (a *InventoryUnitAdapter) ConfirmSale(ctx context.Context, unitIDs []string, saleID, saleNumber string, amount decimal.Decimal, actor string) (appdelivery.GatewayResult, error) {
	var res appdelivery.GatewayResult
	for _, unitID := range unitIDs {
		cmd, err := a.q.Exec(ctx, `
			UPDATE inventory_units
			SET status = $2, sale_id = $3, sale_number = $4, sold_amount = $5,
			    release_reason = NULL, updated_at = now(), updated_by = $6
			WHERE id = $1 AND status = $7`,
			unitID, entity.UnitStatusSold, saleID, saleNumber, amount, actor, entity.UnitStatusReserved,
		)
		if err != nil {
			return res, fmt.Errorf("confirm unit %s: %w", unitID, err)
		}
		if cmd.RowsAffected() == 0 {
			a.log.Warn().Str("unit_id", unitID).Str("sale_id", saleID).
				Msg("unidad no estaba reservada al confirmar venta")
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

// Release devuelve las unidades de reserved a available con un motivo.
func (a *InventoryUnitAdapter) Release(ctx context.Context, unitIDs []string, reason, actor string) (appdelivery.GatewayResult, error) {
	var res appdelivery.GatewayResult
	for _, unitID := range unitIDs {
		cmd, err := a.q.Exec(ctx, `
			UPDATE inventory_units
			SET status = $2, sale_id = NULL, sale_number = NULL, sold_amount = NULL,
			    release_reason = $3, updated_at = now(), updated_by = $4
			WHERE id = $1 AND status = $5`,
			unitID, entity.UnitStatusAvailable, reason, actor, entity.UnitStatusReserved,
		)
		if err != nil {
			return res, fmt.Errorf("release unit %s: %w", unitID, err)
		}
		if cmd.RowsAffected() == 0 {
			a.log.Warn().Str("unit_id", unitID).Str("reason", reason).
				Msg("unidad no estaba reservada al liberar")
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}
