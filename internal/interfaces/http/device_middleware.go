package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
)

// RequireDevice corta las rutas de lectura cuando el binario no puede abrir sesiones DLMS.
//   - 503 DEVICE_UNAVAILABLE → la fábrica no está disponible.
func RequireDevice(checker availability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if checker == nil || !checker.IsAvailable() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "DEVICE_UNAVAILABLE",
				Message: "la comunicación DLMS no está disponible",
			})
		}
		return c.Next()
	}
}
