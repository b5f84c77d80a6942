package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
	"github.com/jcastano/entregas-api/internal/domain/sequence"
)

var _ appdelivery.ExpenseRecorder = (*ExpenseAdapter)(nil)

const expenseCodePrefix = "GD"

// ExpenseAdapter registra gastos de distribución con código GD-<año>-NNN.
// El consecutivo se reserva en el contador atómico, sembrado con el mayor
// sufijo ya presente en la tabla la primera vez que se usa un año.
type ExpenseAdapter struct {
	q        Querier
	counters repository.CounterRepository
	now      func() time.Time
}

// NewExpenseAdapter construye el adaptador. Pasar pool o tx (Querier).
func NewExpenseAdapter(q Querier, counters repository.CounterRepository) *ExpenseAdapter {
	return &ExpenseAdapter{q: q, counters: counters, now: time.Now}
}

// CreateDistributionExpense registra el gasto de distribución de una
// entrega completada (incluso con costo cero) y devuelve su id.
func (a *ExpenseAdapter) CreateDistributionExpense(ctx context.Context, in appdelivery.DistributionExpenseInput, actor string) (string, error) {
	now := a.now()
	code, err := a.nextCode(ctx, now.Year())
	if err != nil {
		return "", err
	}

	exp := entity.Expense{
		ID:           uuid.NewString(),
		Code:         code,
		Category:     entity.ExpenseCategoryDistribution,
		DeliveryID:   in.DeliveryID,
		DeliveryCode: in.DeliveryCode,
		SaleID:       in.SaleID,
		SaleNumber:   in.SaleNumber,
		CarrierID:    in.CarrierID,
		CarrierName:  in.CarrierName,
		Amount:       in.Cost,
		District:     in.District,
		Date:         now,
		CreatedAt:    now,
		CreatedBy:    actor,
	}

	_, err = a.q.Exec(ctx, `
		INSERT INTO expenses (id, code, category, delivery_id, delivery_code, sale_id, sale_number,
			carrier_id, carrier_name, amount, district, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		exp.ID, exp.Code, exp.Category, exp.DeliveryID, exp.DeliveryCode, exp.SaleID, exp.SaleNumber,
		exp.CarrierID, exp.CarrierName, exp.Amount, exp.District, exp.Date, exp.CreatedAt, exp.CreatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	return exp.ID, nil
}

// nextCode reserva el siguiente código GD-<año>-NNN.
func (a *ExpenseAdapter) nextCode(ctx context.Context, year int) (string, error) {
	yearScope := strconv.Itoa(year)
	existing, err := a.listCodesByYear(ctx, year)
	if err != nil {
		return "", err
	}
	seed := sequence.MaxSuffix(expenseCodePrefix, yearScope, existing)
	n, err := a.counters.Next(ctx, sequence.Scope(expenseCodePrefix, yearScope), seed)
	if err != nil {
		return "", fmt.Errorf("reservar consecutivo de gasto: %w", err)
	}
	return sequence.Format(expenseCodePrefix, yearScope, n), nil
}

func (a *ExpenseAdapter) listCodesByYear(ctx context.Context, year int) ([]string, error) {
	rows, err := a.q.Query(ctx,
		`SELECT code FROM expenses WHERE code LIKE 'GD-' || $1::text || '-%'`, year)
	if err != nil {
		return nil, fmt.Errorf("list expense codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan expense code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
