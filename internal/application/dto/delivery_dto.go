package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/domain/entity"
)

// ScheduleDeliveryItemRequest línea seleccionada de la venta.
type ScheduleDeliveryItemRequest struct {
	ProductID       string   `json:"product_id"`
	Quantity        int      `json:"quantity"`
	ReservedUnitIDs []string `json:"reserved_unit_ids"`
}

// ScheduleDeliveryRequest cuerpo para programar una entrega.
type ScheduleDeliveryRequest struct {
	SaleID          string                        `json:"sale_id"`
	CarrierID       string                        `json:"carrier_id"`
	Items           []ScheduleDeliveryItemRequest `json:"items"`
	TotalDeliveries *int                          `json:"total_deliveries,omitempty"`

	Address   string `json:"address"`
	District  string `json:"district"`
	Reference string `json:"reference"`

	ScheduledAt time.Time `json:"scheduled_at"`

	CollectionPending     bool             `json:"collection_pending"`
	AmountToCollect       *decimal.Decimal `json:"amount_to_collect,omitempty"`
	ExpectedPaymentMethod *string          `json:"expected_payment_method,omitempty"`

	CarrierCost decimal.Decimal `json:"carrier_cost"`
}

// DeliveryOutcomeRequest cuerpo para registrar el resultado de una entrega.
type DeliveryOutcomeRequest struct {
	Success bool `json:"success"`

	// Éxito
	DeliveredAt           *time.Time       `json:"delivered_at,omitempty"`
	PaymentCollected      *bool            `json:"payment_collected,omitempty"`
	AmountCollected       *decimal.Decimal `json:"amount_collected,omitempty"`
	PaymentMethodReceived *string          `json:"payment_method_received,omitempty"`
	PhotoURL              *string          `json:"photo_url,omitempty"`
	SignatureURL          *string          `json:"signature_url,omitempty"`

	// Fallo
	Reschedule         bool       `json:"reschedule"`
	NewScheduledAt     *time.Time `json:"new_scheduled_at,omitempty"`
	FailureReason      string     `json:"failure_reason,omitempty"`
	FailureDescription *string    `json:"failure_description,omitempty"`
}

// CancelDeliveryRequest cuerpo para cancelar una entrega.
type CancelDeliveryRequest struct {
	Reason string `json:"reason"`
}

// DeliveryItemResponse línea de entrega en respuestas.
type DeliveryItemResponse struct {
	ProductID       string          `json:"product_id"`
	SKU             string          `json:"sku"`
	Brand           string          `json:"brand"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	ReservedUnitIDs []string        `json:"reserved_unit_ids"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// DeliveryResponse representación externa de una entrega.
type DeliveryResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	SaleID          string `json:"sale_id"`
	SaleNumber      string `json:"sale_number"`
	DeliveryIndex   int    `json:"delivery_index"`
	TotalDeliveries *int   `json:"total_deliveries,omitempty"`

	CarrierID           string `json:"carrier_id"`
	CarrierName         string `json:"carrier_name"`
	CarrierType         string `json:"carrier_type"`
	CarrierPhone        string `json:"carrier_phone,omitempty"`
	ExternalCourierKind string `json:"external_courier_kind,omitempty"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	Address       string `json:"address"`
	District      string `json:"district,omitempty"`
	Reference     string `json:"reference,omitempty"`

	Items          []DeliveryItemResponse `json:"items"`
	ItemCount      int                    `json:"item_count"`
	SubtotalAmount decimal.Decimal        `json:"subtotal_amount"`

	CollectionPending     bool             `json:"collection_pending"`
	AmountToCollect       *decimal.Decimal `json:"amount_to_collect,omitempty"`
	ExpectedPaymentMethod *string          `json:"expected_payment_method,omitempty"`

	CarrierCost           decimal.Decimal `json:"carrier_cost"`
	DistributionExpenseID *string         `json:"distribution_expense_id,omitempty"`

	Status string `json:"status"`

	ScheduledAt             time.Time  `json:"scheduled_at"`
	DepartedAt              *time.Time `json:"departed_at,omitempty"`
	DeliveredAt             *time.Time `json:"delivered_at,omitempty"`
	DeliveryDurationMinutes *int       `json:"delivery_duration_minutes,omitempty"`

	FailureReason      *string `json:"failure_reason,omitempty"`
	FailureDescription *string `json:"failure_description,omitempty"`
	CancelReason       *string `json:"cancel_reason,omitempty"`

	PaymentCollected      *bool            `json:"payment_collected,omitempty"`
	AmountCollected       *decimal.Decimal `json:"amount_collected,omitempty"`
	PaymentMethodReceived *string          `json:"payment_method_received,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromDelivery mapea la entidad a su representación externa.
func FromDelivery(d *entity.Delivery) DeliveryResponse {
	items := make([]DeliveryItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = DeliveryItemResponse{
			ProductID:       it.ProductID,
			SKU:             it.SKU,
			Brand:           it.Brand,
			Name:            it.Name,
			Quantity:        it.Quantity,
			ReservedUnitIDs: it.ReservedUnitIDs,
			UnitPrice:       it.UnitPrice,
			Subtotal:        it.Subtotal,
		}
	}
	return DeliveryResponse{
		ID:                      d.ID,
		Code:                    d.Code,
		SaleID:                  d.SaleID,
		SaleNumber:              d.SaleNumber,
		DeliveryIndex:           d.DeliveryIndex,
		TotalDeliveries:         d.TotalDeliveries,
		CarrierID:               d.CarrierID,
		CarrierName:             d.CarrierName,
		CarrierType:             d.CarrierType,
		CarrierPhone:            d.CarrierPhone,
		ExternalCourierKind:     d.ExternalCourierKind,
		CustomerName:            d.CustomerName,
		CustomerPhone:           d.CustomerPhone,
		Address:                 d.Address,
		District:                d.District,
		Reference:               d.Reference,
		Items:                   items,
		ItemCount:               d.ItemCount,
		SubtotalAmount:          d.SubtotalAmount,
		CollectionPending:       d.CollectionPending,
		AmountToCollect:         d.AmountToCollect,
		ExpectedPaymentMethod:   d.ExpectedPaymentMethod,
		CarrierCost:             d.CarrierCost,
		DistributionExpenseID:   d.DistributionExpenseID,
		Status:                  d.Status,
		ScheduledAt:             d.ScheduledAt,
		DepartedAt:              d.DepartedAt,
		DeliveredAt:             d.DeliveredAt,
		DeliveryDurationMinutes: d.DeliveryDurationMinutes,
		FailureReason:           d.FailureReason,
		FailureDescription:      d.FailureDescription,
		CancelReason:            d.CancelReason,
		PaymentCollected:        d.PaymentCollected,
		AmountCollected:         d.AmountCollected,
		PaymentMethodReceived:   d.PaymentMethodReceived,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}
