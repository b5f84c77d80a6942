package repository

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// CarrierRepository directorio de transportistas (solo lectura aquí).
type CarrierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Carrier, error)
	List(ctx context.Context) ([]*entity.Carrier, error)
}
