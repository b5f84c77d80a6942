package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/application/dto"
	"github.com/jcastano/entregas-api/internal/domain"
)

// DeliveryHandler maneja las peticiones HTTP del ciclo de vida de entregas (protegido).
type DeliveryHandler struct {
	uc *appdelivery.UseCase
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *appdelivery.UseCase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

// Schedule godoc
// @Summary      Programar una entrega
// @Description  Crea una entrega (posiblemente parcial) contra una venta, con snapshot
//
//	de transportista, cliente y líneas, y código consecutivo ENT-<año>-NNN.
//
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScheduleDeliveryRequest  true  "sale_id, carrier_id, items, scheduled_at, carrier_cost"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Schedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ScheduleDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]appdelivery.ScheduleItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = appdelivery.ScheduleItemInput{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			ReservedUnitIDs: it.ReservedUnitIDs,
		}
	}

	d, err := h.uc.Schedule(c.Context(), appdelivery.ScheduleInput{
		SaleID:                in.SaleID,
		CarrierID:             in.CarrierID,
		Items:                 items,
		TotalDeliveries:       in.TotalDeliveries,
		Address:               in.Address,
		District:              in.District,
		Reference:             in.Reference,
		ScheduledAt:           in.ScheduledAt,
		CollectionPending:     in.CollectionPending,
		AmountToCollect:       in.AmountToCollect,
		ExpectedPaymentMethod: in.ExpectedPaymentMethod,
		CarrierCost:           in.CarrierCost,
	}, userID)
	if err != nil {
		return deliveryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromDelivery(d))
}

// GetByID godoc
// @Summary      Consultar una entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(c *fiber.Ctx) error {
	d, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return deliveryError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}

// MarkEnRoute godoc
// @Summary      Marcar salida a ruta
// @Description  Pasa la entrega de scheduled a en_route y registra la hora de salida.
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/depart [post]
func (h *DeliveryHandler) MarkEnRoute(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	d, err := h.uc.MarkEnRoute(c.Context(), c.Params("id"), userID)
	if err != nil {
		return deliveryError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}

// RecordOutcome godoc
// @Summary      Registrar el resultado de una entrega
// @Description  Cierra el intento como entregado o fallido (con reprogramación opcional).
//
//	En éxito confirma unidades, crea el gasto de distribución, asienta el
//	movimiento en el libro del transportista y reconcilia la venta.
//
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la entrega"
// @Param        body  body  dto.DeliveryOutcomeRequest  true  "success, datos de cobro o de fallo"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/outcome [post]
func (h *DeliveryHandler) RecordOutcome(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DeliveryOutcomeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.RecordOutcome(c.Context(), appdelivery.OutcomeInput{
		DeliveryID:            c.Params("id"),
		Success:               in.Success,
		DeliveredAt:           in.DeliveredAt,
		PaymentCollected:      in.PaymentCollected,
		AmountCollected:       in.AmountCollected,
		PaymentMethodReceived: in.PaymentMethodReceived,
		PhotoURL:              in.PhotoURL,
		SignatureURL:          in.SignatureURL,
		Reschedule:            in.Reschedule,
		NewScheduledAt:        in.NewScheduledAt,
		FailureReason:         in.FailureReason,
		FailureDescription:    in.FailureDescription,
	}, userID)
	if err != nil {
		return deliveryError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}

// Cancel godoc
// @Summary      Cancelar una entrega
// @Description  Cancela la entrega y devuelve sus unidades reservadas a stock.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la entrega"
// @Param        body  body  dto.CancelDeliveryRequest  true  "motivo"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/cancel [post]
func (h *DeliveryHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason, userID)
	if err != nil {
		return deliveryError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}

// deliveryError mapea los errores de dominio a códigos HTTP.
func deliveryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "entrega o venta no encontrada"})
	case errors.Is(err, domain.ErrCarrierNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CARRIER_NOT_FOUND", Message: "transportista no encontrado"})
	case errors.Is(err, domain.ErrProductNotInSale):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_IN_SALE", Message: "el producto no pertenece a la venta"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "el estado actual no admite esta operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
