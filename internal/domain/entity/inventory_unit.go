package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una unidad de inventario.
const (
	UnitStatusAvailable = "available" // disponible en stock
	UnitStatusReserved  = "reserved"  // reservada para una entrega
	UnitStatusSold      = "sold"      // venta confirmada
)

// InventoryUnit es una unidad física de inventario. El subsistema de
// entregas solo la confirma (reserved -> sold) o la libera
// (reserved -> available); el resto del ciclo pertenece al módulo de
// inventario.
type InventoryUnit struct {
	ID            string
	ProductID     string
	SKU           string
	Status        string
	SaleID        *string
	SaleNumber    *string
	SoldAmount    *decimal.Decimal
	ReleaseReason *string
	UpdatedAt     time.Time
	UpdatedBy     string // UserID
}
