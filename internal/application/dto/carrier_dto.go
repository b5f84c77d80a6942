package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// CarrierResponse entrada del directorio de transportistas.
type CarrierResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Phone               string `json:"phone,omitempty"`
	ExternalCourierKind string `json:"external_courier_kind,omitempty"`
	Active              bool   `json:"active"`
}

// FromCarrier mapea la entidad a su representación externa.
func FromCarrier(c *entity.Carrier) CarrierResponse {
	return CarrierResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Type:                c.Type,
		Phone:               c.Phone,
		ExternalCourierKind: c.ExternalCourierKind,
		Active:              c.Active,
	}
}

// CarrierStatsResponse acumulados de desempeño de un transportista.
type CarrierStatsResponse struct {
	CarrierID            string          `json:"carrier_id"`
	CarrierName          string          `json:"carrier_name"`
	TotalDeliveries      int             `json:"total_deliveries"`
	SuccessfulDeliveries int             `json:"successful_deliveries"`
	FailedDeliveries     int             `json:"failed_deliveries"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	AvgDurationMinutes   int             `json:"avg_duration_minutes"`
	LastDistrict         string          `json:"last_district,omitempty"`
	LastDeliveryAt       *time.Time      `json:"last_delivery_at,omitempty"`
}

// FromCarrierStats mapea los acumulados a su representación externa.
func FromCarrierStats(c *entity.Carrier, s *entity.CarrierStats) CarrierStatsResponse {
	out := CarrierStatsResponse{
		CarrierID:            c.ID,
		CarrierName:          c.Name,
		TotalDeliveries:      s.TotalDeliveries,
		SuccessfulDeliveries: s.SuccessfulDeliveries,
		FailedDeliveries:     s.FailedDeliveries,
		TotalCost:            s.TotalCost,
		AvgDurationMinutes:   s.AvgDurationMinutes(),
		LastDistrict:         s.LastDistrict,
	}
	if !s.LastDeliveryAt.IsZero() {
		t := s.LastDeliveryAt
		out.LastDeliveryAt = &t
	}
	return out
}
