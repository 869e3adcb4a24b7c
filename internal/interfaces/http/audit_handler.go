package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// AuditHandler auditoría de movimientos y reimpresión de recibos (protegido).
type AuditHandler struct {
	ledger    *inventory.LedgerUseCase
	documents *reports.DocumentUseCase
	log       *logger.Logger
}

// NewAuditHandler construye el handler.
func NewAuditHandler(ledger *inventory.LedgerUseCase, documents *reports.DocumentUseCase, log *logger.Logger) *AuditHandler {
	return &AuditHandler{ledger: ledger, documents: documents, log: log}
}

// List godoc
// @Summary      Auditoría de movimientos
// @Description  Movimientos más recientes primero, con nombre del medicamento y usuario.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        batch_number  query     string  false  "filtrar por número de lote"
// @Param        limit         query     int     false  "máximo de filas (default 500)"
// @Success      200           {array}   dto.AuditRecordResponse
// @Router       /api/audit/ [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	list, err := h.ledger.ListMovements(c.UserContext(), c.Query("batch_number"), c.QueryInt("limit", 0))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(toAuditRecords(list))
}

// Reprint godoc
// @Summary      Reimprimir recibo
// @Tags         audit
// @Security     Bearer
// @Produce      application/pdf
// @Param        txId  path  string  true  "Transaction ID"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/audit/reprint/{txId} [get]
func (h *AuditHandler) Reprint(c *fiber.Ctx) error {
	f, err := h.documents.Reprint(c.UserContext(), c.Params("txId"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return sendFile(c, f)
}
