package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cumplimiento de una venta. Este subsistema solo escribe
// in_delivery y delivered; los demás pertenecen al módulo de ventas.
const (
	SaleStatusPending    = "pending"
	SaleStatusInDelivery = "in_delivery"
	SaleStatusDelivered  = "delivered"
)

// SaleItem línea de una venta.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	SKU       string
	Brand     string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Sale es la venta padre cuyas líneas cumple una o varias entregas.
// Vive en el módulo de ventas; aquí solo se lee y se actualiza su estado
// de cumplimiento.
type Sale struct {
	ID            string
	Number        string
	CustomerName  string
	CustomerPhone string
	Status        string
	Items         []SaleItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalQuantity suma las cantidades de todas las líneas de la venta.
func (s *Sale) TotalQuantity() int {
	total := 0
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// FindItem busca la línea de la venta para un producto. nil si no existe.
func (s *Sale) FindItem(productID string) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}
