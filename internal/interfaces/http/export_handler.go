package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
)

// ExportHandler descarga o sube exportaciones del historial.
type ExportHandler struct {
	uc *billing.ExportUseCase
}

func NewExportHandler(uc *billing.ExportUseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar historial o recibo del medidor
// @Tags         exports
// @Produce      json,text/csv,application/pdf,text/plain
// @Security     BearerAuth
// @Param        serial  path   string  true   "serial del medidor"
// @Param        format  query  string  false  "json | csv | xlsx | pdf | txt"
// @Param        upload  query  bool    false  "subir al almacenamiento y devolver URL"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/exports/{serial} [get]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	upload := c.QueryBool("upload", false)
	f, err := h.uc.Export(c.UserContext(), c.Params("serial"), c.Query("format", billing.FormatJSON), upload)
	if err != nil {
		return respondError(c, err)
	}
	if upload {
		return c.JSON(dto.ExportUploadResponse{FileName: f.FileName, ContentType: f.ContentType, URL: f.URL})
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.FileName))
	return c.Send(f.Data)
}
