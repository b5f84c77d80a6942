package ledger

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción serializada por
// transportista: dos appends concurrentes para el mismo transportista se
// ordenan uno detrás del otro, de modo que la lectura del último saldo y
// la escritura del nuevo movimiento sean atómicas. Así el encadenamiento
// balanceBefore/balanceAfter nunca se calcula sobre datos obsoletos.
type TxRunner interface {
	RunSerialized(ctx context.Context, carrierID string, fn func(movRepo repository.CarrierMovementRepository) error) error
}
