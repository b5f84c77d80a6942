package repository

import "context"

// CounterRepository reserva consecutivos de código de forma atómica por
// alcance (ej. "ENT-2024", "GD-2025"). La primera reserva de un alcance
// siembra el contador con seed (el mayor sufijo ya existente en los
// registros), de modo que la serie continúa donde iba.
type CounterRepository interface {
	// Next incrementa y devuelve el consecutivo del alcance. Dos llamadas
	// concurrentes nunca devuelven el mismo número.
	Next(ctx context.Context, scope string, seed int) (int, error)
}
