package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una entrega.
// delivered y cancelled son terminales; failed solo admite reprogramación
// en el momento de registrar el resultado (nunca después).
const (
	DeliveryStatusScheduled   = "scheduled"   // programada
	DeliveryStatusEnRoute     = "en_route"    // en ruta
	DeliveryStatusDelivered   = "delivered"   // entregada
	DeliveryStatusFailed      = "failed"      // fallida
	DeliveryStatusRescheduled = "rescheduled" // reprogramada
	DeliveryStatusCancelled   = "cancelled"   // cancelada
)

// Motivos de fallo de una entrega (solo cuando failed/rescheduled).
const (
	FailureReasonNotFound        = "not_found"        // dirección no encontrada
	FailureReasonAbsent          = "absent"           // cliente ausente
	FailureReasonRefused         = "refused"          // cliente rechazó el pedido
	FailureReasonDamagedProduct  = "damaged_product"  // producto dañado en ruta
	FailureReasonPaymentRejected = "payment_rejected" // pago rechazado al entregar
	FailureReasonOther           = "other"
)

// DeliveryItem línea de una entrega: snapshot del producto de la venta
// más las unidades de inventario reservadas para esta entrega.
type DeliveryItem struct {
	ID              string
	DeliveryID      string
	ProductID       string
	SKU             string
	Brand           string
	Name            string
	Quantity        int
	ReservedUnitIDs []string
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
}

// Delivery representa un intento de envío (posiblemente parcial) contra una venta.
// El snapshot de transportista y cliente se toma al crear y no se re-sincroniza.
type Delivery struct {
	ID              string
	Code            string // ENT-<año>-NNN
	SaleID          string
	SaleNumber      string
	DeliveryIndex   int  // ordinal 1-based entre las entregas de la venta
	TotalDeliveries *int // planificadas, si se conoce

	// Snapshot del transportista
	CarrierID           string
	CarrierName         string
	CarrierType         string // interno | courier externo
	CarrierPhone        string
	ExternalCourierKind string // tipo de courier externo, si aplica

	// Snapshot del cliente y dirección
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Address       string
	District      string
	Reference     string

	Items          []DeliveryItem
	ItemCount      int // suma de cantidades de las líneas
	SubtotalAmount decimal.Decimal

	// Condiciones de cobro contra entrega
	CollectionPending     bool
	AmountToCollect       *decimal.Decimal
	ExpectedPaymentMethod *string

	// Costo del transportista por esta entrega y gasto de distribución asociado
	CarrierCost           decimal.Decimal
	DistributionExpenseID *string

	Status string

	ScheduledAt             time.Time
	DepartedAt              *time.Time
	DeliveredAt             *time.Time
	DeliveryDurationMinutes *int // deliveredAt - departedAt

	// Datos de fallo (solo failed/rescheduled)
	FailureReason      *string
	FailureDescription *string

	// Motivo de cancelación (solo cancelled)
	CancelReason *string

	// Resultado del cobro (solo delivered)
	PaymentCollected      *bool
	AmountCollected       *decimal.Decimal
	PaymentMethodReceived *string

	// Evidencia opcional de la entrega
	PhotoURL     *string
	SignatureURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string // UserID
	UpdatedBy string
}

// AllReservedUnitIDs devuelve el conjunto de unidades de inventario que esta
// entrega reclama, en el orden de las líneas. Es el conjunto autoritativo:
// debe ser disjunto del de las entregas hermanas de la misma venta.
func (d *Delivery) AllReservedUnitIDs() []string {
	var ids []string
	for _, it := range d.Items {
		ids = append(ids, it.ReservedUnitIDs...)
	}
	return ids
}

// IsTerminal indica si el estado no admite más transiciones.
func (d *Delivery) IsTerminal() bool {
	return d.Status == DeliveryStatusDelivered || d.Status == DeliveryStatusCancelled
}

// ComputeTotals recalcula ItemCount y SubtotalAmount a partir de las líneas.
func (d *Delivery) ComputeTotals() {
	count := 0
	subtotal := decimal.Zero
	for _, it := range d.Items {
		count += it.Quantity
		subtotal = subtotal.Add(it.Subtotal)
	}
	d.ItemCount = count
	d.SubtotalAmount = subtotal
}
