package repository

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// CarrierMovementRepository define el puerto del libro de transportistas.
// El libro es append-only: Create es la única escritura; los movimientos
// nunca se actualizan ni se borran.
type CarrierMovementRepository interface {
	Create(ctx context.Context, m *entity.CarrierMovement) error
	// GetLatestByCarrier devuelve el movimiento más reciente del
	// transportista (por fecha de creación). nil si no hay movimientos.
	GetLatestByCarrier(ctx context.Context, carrierID string) (*entity.CarrierMovement, error)
	// ListByCarrier devuelve los últimos limit movimientos, del más
	// reciente al más antiguo.
	ListByCarrier(ctx context.Context, carrierID string, limit int) ([]*entity.CarrierMovement, error)
}
