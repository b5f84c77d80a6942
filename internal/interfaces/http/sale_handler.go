package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/application/dto"
	"github.com/jcastano/entregas-api/internal/application/fulfillment"
	"github.com/jcastano/entregas-api/internal/domain"
)

// SaleHandler expone la vista de entregas desde la venta y la
// reconciliación de su estado de cumplimiento (protegido).
type SaleHandler struct {
	deliveries  *appdelivery.UseCase
	fulfillment *fulfillment.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(deliveries *appdelivery.UseCase, fulfillmentUC *fulfillment.UseCase) *SaleHandler {
	return &SaleHandler{deliveries: deliveries, fulfillment: fulfillmentUC}
}

// ListDeliveries godoc
// @Summary      Listar las entregas de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {array}  dto.DeliveryResponse
// @Router       /api/sales/{id}/deliveries [get]
func (h *SaleHandler) ListDeliveries(c *fiber.Ctx) error {
	deliveries, err := h.deliveries.ListBySale(c.Context(), c.Params("id"))
	if err != nil {
		return saleError(c, err)
	}
	out := make([]dto.DeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		out[i] = dto.FromDelivery(d)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar el estado de cumplimiento de una venta
// @Description  Recalcula el estado de la venta a partir de sus entregas.
//
//	Idempotente: no escribe si el estado ya es el correcto.
//
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/reconcile [post]
func (h *SaleHandler) Reconcile(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.fulfillment.Reconcile(c.Context(), c.Params("id"), userID); err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta reconciliada"})
}

// saleError mapea los errores de dominio a códigos HTTP.
func saleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
