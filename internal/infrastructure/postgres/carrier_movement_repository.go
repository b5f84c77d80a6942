package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

var _ repository.CarrierMovementRepository = (*CarrierMovementRepo)(nil)

// CarrierMovementRepo implementación del libro de transportistas sobre PostgreSQL.
// Solo inserta y lee: la tabla no tiene UPDATE ni DELETE desde la aplicación.
type CarrierMovementRepo struct {
	q Querier
}

// NewCarrierMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCarrierMovementRepository(q Querier) *CarrierMovementRepo {
	return &CarrierMovementRepo{q: q}
}

const movementColumns = `
	id, carrier_id, carrier_name, kind,
	delivery_id, delivery_code, sale_id, sale_number, expense_id,
	carrier_cost, amount_collected, payment_amount,
	balance_before, net_movement, balance_after,
	notes, created_at, created_by`

// Create asienta un movimiento en el libro.
func (r *CarrierMovementRepo) Create(ctx context.Context, m *entity.CarrierMovement) error {
	query := `
		INSERT INTO carrier_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CarrierID, m.CarrierName, m.Kind,
		m.DeliveryID, m.DeliveryCode, m.SaleID, m.SaleNumber, m.ExpenseID,
		m.CarrierCost, m.AmountCollected, m.PaymentAmount,
		m.BalanceBefore, m.NetMovement, m.BalanceAfter,
		m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert carrier movement: %w", err)
	}
	return nil
}

// GetLatestByCarrier devuelve el movimiento más reciente del transportista. nil si no hay.
func (r *CarrierMovementRepo) GetLatestByCarrier(ctx context.Context, carrierID string) (*entity.CarrierMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM carrier_movements WHERE carrier_id = $1
		ORDER BY created_at DESC, id DESC LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, carrierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest carrier movement: %w", err)
	}
	return m, nil
}

// ListByCarrier devuelve los últimos limit movimientos, del más reciente al más antiguo.
func (r *CarrierMovementRepo) ListByCarrier(ctx context.Context, carrierID string, limit int) ([]*entity.CarrierMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM carrier_movements WHERE carrier_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, carrierID, limit)
	if err != nil {
		return nil, fmt.Errorf("list carrier movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.CarrierMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carrier movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.CarrierMovement, error) {
	var m entity.CarrierMovement
	err := row.Scan(
		&m.ID, &m.CarrierID, &m.CarrierName, &m.Kind,
		&m.DeliveryID, &m.DeliveryCode, &m.SaleID, &m.SaleNumber, &m.ExpenseID,
		&m.CarrierCost, &m.AmountCollected, &m.PaymentAmount,
		&m.BalanceBefore, &m.NetMovement, &m.BalanceAfter,
		&m.Notes, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
