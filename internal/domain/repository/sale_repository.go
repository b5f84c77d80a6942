package repository

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// SaleRepository define el puerto de lectura/actualización de la venta padre.
// Este subsistema solo lee la venta y escribe su estado de cumplimiento.
type SaleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la fila de la venta (SELECT FOR UPDATE); usar
	// dentro de una transacción para evitar lost updates al reconciliar.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	UpdateStatus(ctx context.Context, id, status, actor string) error
}
