package repository

import (
	"context"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// DeliveryRepository define el puerto de persistencia para Delivery y sus líneas.
// Las entregas nunca se borran: los estados terminales se conservan para auditoría.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery) error
	// Update persiste los campos mutables de la entrega (estado, timestamps,
	// datos de fallo/cobro). Las líneas no cambian después de crear.
	Update(ctx context.Context, d *entity.Delivery) error
	// SetDistributionExpenseID guarda el id del gasto de distribución una vez creado.
	SetDistributionExpenseID(ctx context.Context, deliveryID, expenseID string) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetBySaleID(ctx context.Context, saleID string) ([]*entity.Delivery, error)
	CountBySaleID(ctx context.Context, saleID string) (int, error)
	// ListCodesByYear devuelve los códigos ENT-<año>-NNN existentes; se usa
	// para sembrar el contador atómico la primera vez que se pide un código.
	ListCodesByYear(ctx context.Context, year int) ([]string, error)
}
