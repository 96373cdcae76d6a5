package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
)

// availability lo implementa *dlms.Factory.
type availability interface {
	IsAvailable() bool
}

// MeterHandler lecturas DLMS.
type MeterHandler struct {
	uc      *billing.MeterReadUseCase
	factory availability
}

func NewMeterHandler(uc *billing.MeterReadUseCase, factory availability) *MeterHandler {
	return &MeterHandler{uc: uc, factory: factory}
}

// Availability indica si el binario incluye la implementación DLMS.
// GET /api/dlms/availability
func (h *MeterHandler) Availability(c *fiber.Ctx) error {
	return c.JSON(dto.DLMSAvailabilityResponse{Available: h.factory.IsAvailable()})
}

// Read godoc
// @Summary      Leer medidor por DLMS y guardar la facturación
// @Tags         meters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReadMeterRequest  true  "serial y operaciones opcionales"
// @Success      200   {object}  dto.ReadMeterResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/meters/read [post]
func (h *MeterHandler) Read(c *fiber.Ctx) error {
	var in dto.ReadMeterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ReadMeter(c.UserContext(), in, GetReaderName(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
