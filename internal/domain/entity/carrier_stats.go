package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarrierStats acumulados de desempeño por transportista. Se actualizan
// al registrar el resultado de cada entrega.
type CarrierStats struct {
	CarrierID            string
	TotalDeliveries      int
	SuccessfulDeliveries int
	FailedDeliveries     int
	TotalCost            decimal.Decimal
	TotalDurationMinutes int // solo entregas exitosas con hora de salida
	LastDistrict         string
	LastDeliveryAt       time.Time
	UpdatedAt            time.Time
}

// AvgDurationMinutes duración promedio de las entregas exitosas. 0 si no hay datos.
func (s *CarrierStats) AvgDurationMinutes() int {
	if s.SuccessfulDeliveries == 0 {
		return 0
	}
	return s.TotalDurationMinutes / s.SuccessfulDeliveries
}
