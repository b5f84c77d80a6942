package postgres

import (
	"context"
	"fmt"

	"github.com/jcastano/entregas-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo consecutivos atómicos por alcance sobre una tabla counters.
// El INSERT .. ON CONFLICT DO UPDATE .. RETURNING reserva el número en una
// sola sentencia: dos llamadas concurrentes nunca reciben el mismo valor.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del alcance. La primera reserva
// siembra el contador con seed (el mayor sufijo ya existente en los
// registros), de modo que la serie continúa donde iba.
func (r *CounterRepo) Next(ctx context.Context, scope string, seed int) (int, error) {
	var value int
	err := r.q.QueryRow(ctx, `
		INSERT INTO counters (scope, value)
		VALUES ($1, GREATEST($2, 0) + 1)
		ON CONFLICT (scope) DO UPDATE SET value = counters.value + 1
		RETURNING value`,
		scope, seed,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next counter %s: %w", scope, err)
	}
	return value, nil
}
