package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastano/entregas-api/internal/application/dto"
	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

// carrierStatsReader es el contrato mínimo para consultar acumulados de
// desempeño. Lo implementa el adaptador de estadísticas en infrastructure;
// el uso de interfaz evita que el handler dependa de postgres.
type carrierStatsReader interface {
	GetByCarrier(ctx context.Context, carrierID string) (*entity.CarrierStats, error)
}

// CarrierHandler maneja las peticiones HTTP de transportistas: directorio,
// cuenta corriente, pagos y estadísticas (protegido).
type CarrierHandler struct {
	ledger   *ledger.UseCase
	carriers repository.CarrierRepository
	stats    carrierStatsReader
}

// NewCarrierHandler construye el handler.
func NewCarrierHandler(ledgerUC *ledger.UseCase, carriers repository.CarrierRepository, stats carrierStatsReader) *CarrierHandler {
	return &CarrierHandler{ledger: ledgerUC, carriers: carriers, stats: stats}
}

// List godoc
// @Summary      Listar transportistas
// @Tags         carriers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CarrierResponse
// @Router       /api/carriers [get]
func (h *CarrierHandler) List(c *fiber.Ctx) error {
	carriers, err := h.carriers.List(c.Context())
	if err != nil {
		return carrierError(c, err)
	}
	out := make([]dto.CarrierResponse, len(carriers))
	for i, carrier := range carriers {
		out[i] = dto.FromCarrier(carrier)
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Saldo actual del transportista
// @Description  Saldo positivo = se le debe al transportista.
// @Tags         carriers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del transportista"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/carriers/{id}/balance [get]
func (h *CarrierHandler) Balance(c *fiber.Ctx) error {
	carrierID := c.Params("id")
	balance, err := h.ledger.CurrentBalance(c.Context(), carrierID)
	if err != nil {
		return carrierError(c, err)
	}
	return c.JSON(fiber.Map{"carrier_id": carrierID, "balance": balance})
}

// Account godoc
// @Summary      Resumen de cuenta del transportista
// @Description  Saldo y acumulados sobre los últimos movimientos del libro
//
//	(costos facturados, cobros retenidos, pagos).
//
// @Tags         carriers
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del transportista"
// @Param        limit  query  int     false  "Cuántos movimientos considerar (default 50)"
// @Success      200  {object}  dto.CarrierAccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/carriers/{id}/account [get]
func (h *CarrierHandler) Account(c *fiber.Ctx) error {
	summary, err := h.ledger.AccountSummary(c.Context(), c.Params("id"), c.QueryInt("limit"))
	if err != nil {
		return carrierError(c, err)
	}
	return c.JSON(dto.FromAccountSummary(summary))
}

// RecordPayment godoc
// @Summary      Registrar un pago al transportista
// @Description  Asienta un movimiento carrier_payment que reduce el saldo adeudado.
// @Tags         carriers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del transportista"
// @Param        body  body  dto.CarrierPaymentRequest  true  "amount, notes"
// @Success      201   {object}  dto.CarrierMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carriers/{id}/payments [post]
func (h *CarrierHandler) RecordPayment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CarrierPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.ledger.RecordPayment(c.Context(), c.Params("id"), in.Amount, in.Notes, userID)
	if err != nil {
		return carrierError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCarrierMovement(m))
}

// Stats godoc
// @Summary      Estadísticas de desempeño del transportista
// @Tags         carriers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del transportista"
// @Success      200  {object}  dto.CarrierStatsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/carriers/{id}/stats [get]
func (h *CarrierHandler) Stats(c *fiber.Ctx) error {
	carrierID := c.Params("id")
	carrier, err := h.carriers.GetByID(c.Context(), carrierID)
	if err != nil {
		return carrierError(c, err)
	}
	if carrier == nil {
		return carrierError(c, domain.ErrCarrierNotFound)
	}
	stats, err := h.stats.GetByCarrier(c.Context(), carrierID)
	if err != nil {
		return carrierError(c, err)
	}
	if stats == nil {
		// Transportista sin entregas registradas todavía
		stats = &entity.CarrierStats{CarrierID: carrierID}
	}
	return c.JSON(dto.FromCarrierStats(carrier, stats))
}

// carrierError mapea los errores de dominio a códigos HTTP.
func carrierError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrCarrierNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CARRIER_NOT_FOUND", Message: "transportista no encontrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
