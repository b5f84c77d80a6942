package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

var _ repository.CarrierRepository = (*CarrierRepo)(nil)

// CarrierRepo directorio de transportistas sobre PostgreSQL (solo lectura aquí).
type CarrierRepo struct {
	q Querier
}

// NewCarrierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCarrierRepository(q Querier) *CarrierRepo {
	return &CarrierRepo{q: q}
}

const carrierColumns = `id, name, type, phone, external_courier_kind, active, created_at`

// GetByID obtiene un transportista por ID. nil si no existe.
func (r *CarrierRepo) GetByID(ctx context.Context, id string) (*entity.Carrier, error) {
	var c entity.Carrier
	err := r.q.QueryRow(ctx, `SELECT `+carrierColumns+` FROM carriers WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.Phone, &c.ExternalCourierKind, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier: %w", err)
	}
	return &c, nil
}

// List lista todos los transportistas, activos primero.
func (r *CarrierRepo) List(ctx context.Context) ([]*entity.Carrier, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+carrierColumns+` FROM carriers ORDER BY active DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	var carriers []*entity.Carrier
	for rows.Next() {
		var c entity.Carrier
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Phone, &c.ExternalCourierKind, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		carriers = append(carriers, &c)
	}
	return carriers, rows.Err()
}
