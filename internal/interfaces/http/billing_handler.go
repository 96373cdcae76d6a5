package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
)

// BillingHandler cálculo y consulta del historial de facturación (protegido).
type BillingHandler struct {
	uc *billing.BillingUseCase
}

func NewBillingHandler(uc *billing.BillingUseCase) *BillingHandler {
	return &BillingHandler{uc: uc}
}

// Compute godoc
// @Summary      Calcular y guardar facturación
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ComputeBillingRequest  true  "lecturas del medidor"
// @Success      201   {object}  dto.ComputeBillingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/billing/compute [post]
func (h *BillingHandler) Compute(c *fiber.Ctx) error {
	var in dto.ComputeBillingRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Compute(c.UserContext(), in, GetReaderName(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMeters medidores con historial.
// GET /api/billing/meters
func (h *BillingHandler) ListMeters(c *fiber.Ctx) error {
	out, err := h.uc.ListMeters(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Latest godoc
// @Summary      Último registro de facturación del medidor
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        serial  path  string  true  "serial del medidor"
// @Success      200   {object}  dto.SavedBillingResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/billing/{serial} [get]
func (h *BillingHandler) Latest(c *fiber.Ctx) error {
	out, err := h.uc.Latest(c.UserContext(), c.Params("serial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History página del historial (más reciente primero).
// GET /api/billing/:serial/history?limit=&offset=
func (h *BillingHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	out, err := h.uc.History(c.UserContext(), c.Params("serial"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary resumen del historial.
// GET /api/billing/:serial/summary
func (h *BillingHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), c.Params("serial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Clear elimina el historial del medidor.
// DELETE /api/billing/:serial
func (h *BillingHandler) Clear(c *fiber.Ctx) error {
	if err := h.uc.Clear(c.UserContext(), c.Params("serial")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearAll elimina el historial de todos los medidores (admin).
// DELETE /api/billing
func (h *BillingHandler) ClearAll(c *fiber.Ctx) error {
	if err := h.uc.ClearAll(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
