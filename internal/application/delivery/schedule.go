package delivery

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/sequence"
)

// Prefijo de los códigos de entrega (ENT-<año>-NNN).
const codePrefix = "ENT"

// ScheduleItemInput línea seleccionada de la venta para esta entrega.
// El productID debe existir en las líneas de la venta; las unidades
// reservadas ya vienen apartadas por el módulo de inventario.
type ScheduleItemInput struct {
	ProductID       string
	Quantity        int
	ReservedUnitIDs []string
}

// ScheduleInput datos para programar una entrega contra una venta.
type ScheduleInput struct {
	SaleID          string
	CarrierID       string
	Items           []ScheduleItemInput
	TotalDeliveries *int

	// Dirección de destino (snapshot)
	Address   string
	District  string
	Reference string

	ScheduledAt time.Time

	// Condiciones de cobro contra entrega
	CollectionPending     bool
	AmountToCollect       *decimal.Decimal
	ExpectedPaymentMethod *string

	CarrierCost decimal.Decimal
}

// Schedule programa una nueva entrega: valida venta, transportista y
// líneas; asigna el ordinal y el código secuencial; toma los snapshots y
// persiste en estado scheduled. Después marca la venta como in_delivery.
func (uc *UseCase) Schedule(ctx context.Context, in ScheduleInput, actor string) (*entity.Delivery, error) {
	if in.SaleID == "" || in.CarrierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	sale, err := uc.sales.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}

	carrier, err := uc.carriers.GetByID(ctx, in.CarrierID)
	if err != nil {
		return nil, err
	}
	if carrier == nil {
		return nil, domain.ErrCarrierNotFound
	}

	// Cada línea pedida debe existir en la venta; el snapshot de producto
	// (sku, marca, nombre, precio) se toma de la línea de la venta.
	items := make([]entity.DeliveryItem, 0, len(in.Items))
	for _, it := range in.Items {
		saleItem := sale.FindItem(it.ProductID)
		if saleItem == nil {
			return nil, domain.ErrProductNotInSale
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		items = append(items, entity.DeliveryItem{
			ID:              uuid.New().String(),
			ProductID:       it.ProductID,
			SKU:             saleItem.SKU,
			Brand:           saleItem.Brand,
			Name:            saleItem.Name,
			Quantity:        it.Quantity,
			ReservedUnitIDs: it.ReservedUnitIDs,
			UnitPrice:       saleItem.UnitPrice,
			Subtotal:        saleItem.UnitPrice.Mul(qty),
		})
	}

	existing, err := uc.deliveries.CountBySaleID(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	code, err := uc.nextDeliveryCode(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	scheduledAt := in.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = now
	}

	d := &entity.Delivery{
		ID:              uuid.New().String(),
		Code:            code,
		SaleID:          sale.ID,
		SaleNumber:      sale.Number,
		DeliveryIndex:   existing + 1,
		TotalDeliveries: in.TotalDeliveries,

		CarrierID:           carrier.ID,
		CarrierName:         carrier.Name,
		CarrierType:         carrier.Type,
		CarrierPhone:        carrier.Phone,
		ExternalCourierKind: carrier.ExternalCourierKind,

		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		Address:       in.Address,
		District:      in.District,
		Reference:     in.Reference,

		Items: items,

		CollectionPending:     in.CollectionPending,
		AmountToCollect:       in.AmountToCollect,
		ExpectedPaymentMethod: in.ExpectedPaymentMethod,

		CarrierCost: in.CarrierCost,

		Status:      entity.DeliveryStatusScheduled,
		ScheduledAt: scheduledAt,

		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
	d.ComputeTotals()

	if err := uc.deliveries.Create(ctx, d); err != nil {
		return nil, err
	}

	// Efecto posterior best-effort: la venta entra en reparto.
	if sale.Status != entity.SaleStatusInDelivery {
		if err := uc.sales.UpdateStatus(ctx, sale.ID, entity.SaleStatusInDelivery, actor); err != nil {
			uc.log.Error().Err(err).Str("sale", sale.Number).Msg("marcar venta in_delivery")
		}
	}

	uc.log.Info().
		Str("delivery", d.Code).
		Str("sale", d.SaleNumber).
		Int("index", d.DeliveryIndex).
		Int("items", d.ItemCount).
		Str("actor", actor).
		Msg("entrega programada")
	return d, nil
}

// nextDeliveryCode reserva el siguiente código ENT-<año>-NNN. El contador
// atómico se siembra con el mayor sufijo existente, así la serie continúa
// donde iba aunque el contador sea nuevo.
func (uc *UseCase) nextDeliveryCode(ctx context.Context, year int) (string, error) {
	yearScope := strconv.Itoa(year)
	codes, err := uc.deliveries.ListCodesByYear(ctx, year)
	if err != nil {
		return "", err
	}
	seed := sequence.MaxSuffix(codePrefix, yearScope, codes)
	n, err := uc.counters.Next(ctx, sequence.Scope(codePrefix, yearScope), seed)
	if err != nil {
		return "", err
	}
	return sequence.Format(codePrefix, yearScope, n), nil
}
