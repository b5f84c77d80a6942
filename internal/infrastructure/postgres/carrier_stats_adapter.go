package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/domain/entity"
)

var _ appdelivery.CarrierMetricsTracker = (*CarrierStatsAdapter)(nil)

// CarrierStatsAdapter acumula métricas de desempeño por transportista en
// la tabla carrier_stats. El upsert suma sobre los acumulados existentes
// en una sola sentencia, así dos resultados concurrentes no se pierden.
type CarrierStatsAdapter struct {
	q Querier
}

// NewCarrierStatsAdapter construye el adaptador. Pasar pool o tx (Querier).
func NewCarrierStatsAdapter(q Querier) *CarrierStatsAdapter {
	return &CarrierStatsAdapter{q: q}
}

// RecordDelivery acumula el resultado de una entrega en las estadísticas
// del transportista. durationMinutes solo cuenta en entregas exitosas con
// hora de salida registrada (0 en el resto).
func (a *CarrierStatsAdapter) RecordDelivery(ctx context.Context, carrierID string, success bool, durationMinutes int, cost decimal.Decimal, district string) error {
	successes := 0
	failures := 0
	if success {
		successes = 1
	} else {
		failures = 1
		durationMinutes = 0
	}

	_, err := a.q.Exec(ctx, `
		INSERT INTO carrier_stats (carrier_id, total_deliveries, successful_deliveries, failed_deliveries,
			total_cost, total_duration_minutes, last_district, last_delivery_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (carrier_id) DO UPDATE SET
			total_deliveries = carrier_stats.total_deliveries + 1,
			successful_deliveries = carrier_stats.successful_deliveries + EXCLUDED.successful_deliveries,
			failed_deliveries = carrier_stats.failed_deliveries + EXCLUDED.failed_deliveries,
			total_cost = carrier_stats.total_cost + EXCLUDED.total_cost,
			total_duration_minutes = carrier_stats.total_duration_minutes + EXCLUDED.total_duration_minutes,
			last_district = EXCLUDED.last_district,
			last_delivery_at = now(),
			updated_at = now()`,
		carrierID, successes, failures, cost, durationMinutes, district,
	)
	if err != nil {
		return fmt.Errorf("record carrier delivery stats: %w", err)
	}
	return nil
}

// GetByCarrier devuelve los acumulados del transportista. nil si nunca entregó.
func (a *CarrierStatsAdapter) GetByCarrier(ctx context.Context, carrierID string) (*entity.CarrierStats, error) {
	var s entity.CarrierStats
	err := a.q.QueryRow(ctx, `
		SELECT carrier_id, total_deliveries, successful_deliveries, failed_deliveries,
			total_cost, total_duration_minutes, last_district, last_delivery_at, updated_at
		FROM carrier_stats WHERE carrier_id = $1`, carrierID).Scan(
		&s.CarrierID, &s.TotalDeliveries, &s.SuccessfulDeliveries, &s.FailedDeliveries,
		&s.TotalCost, &s.TotalDurationMinutes, &s.LastDistrict, &s.LastDeliveryAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier stats: %w", err)
	}
	return &s, nil
}
