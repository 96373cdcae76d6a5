package http

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
)

// RateHandler tabla de tarifas (rate.csv).
type RateHandler struct {
	uc *billing.RateUseCase
}

func NewRateHandler(uc *billing.RateUseCase) *RateHandler {
	return &RateHandler{uc: uc}
}

// Current tarifas vigentes.
// GET /api/rates
func (h *RateHandler) Current(c *fiber.Ctx) error {
	return c.JSON(h.uc.Current())
}

// Validate godoc
// @Summary      Validar rate.csv sin aplicarlo
// @Tags         rates
// @Accept       text/csv,multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  dto.RateValidationResponse
// @Router       /api/rates/validate [post]
func (h *RateHandler) Validate(c *fiber.Ctx) error {
	r, err := rateFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	return c.JSON(h.uc.Validate(r))
}

// Replace valida y reemplaza rate.csv (admin).
// PUT /api/rates
func (h *RateHandler) Replace(c *fiber.Ctx) error {
	r, err := rateFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	out, err := h.uc.Replace(r)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// rateFile acepta el CSV como campo "file" de un multipart o como cuerpo crudo.
func rateFile(c *fiber.Ctx) (io.Reader, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	return bytes.NewReader(c.Body()), nil
}
