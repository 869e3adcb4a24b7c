package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/reports"
)

// sendFile responde el documento como descarga.
func sendFile(c *fiber.Ctx, f *reports.File) error {
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	return c.Status(fiber.StatusOK).Send(f.Data)
}
