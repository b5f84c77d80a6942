package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categoría de gasto que registra este subsistema.
const ExpenseCategoryDistribution = "distribucion"

// Expense es un gasto de distribución ("GD") creado por cada entrega
// completada para dejar rastro del costo del transportista. Se crea
// incluso con costo cero para mantener la pista de auditoría.
type Expense struct {
	ID           string
	Code         string // GD-<año>-NNN
	Category     string
	DeliveryID   string
	DeliveryCode string
	SaleID       string
	SaleNumber   string
	CarrierID    string
	CarrierName  string
	Amount       decimal.Decimal
	District     string
	Date         time.Time
	CreatedAt    time.Time
	CreatedBy    string // UserID
}
