package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// AlertsHandler alertas de stock, checklist de conteo y conciliación (protegido).
type AlertsHandler struct {
	stock     *inventory.StockUseCase
	ledger    *inventory.LedgerUseCase
	documents *reports.DocumentUseCase
	log       *logger.Logger
}

// NewAlertsHandler construye el handler.
func NewAlertsHandler(stock *inventory.StockUseCase, ledger *inventory.LedgerUseCase, documents *reports.DocumentUseCase, log *logger.Logger) *AlertsHandler {
	return &AlertsHandler{stock: stock, ledger: ledger, documents: documents, log: log}
}

// Alerts godoc
// @Summary      Alertas de vencimiento, stock bajo y controlados
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertsResponse
// @Router       /api/alerts/ [get]
func (h *AlertsHandler) Alerts(c *fiber.Ctx) error {
	report, err := h.stock.Alerts(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	today := time.Now()
	return c.JSON(dto.AlertsResponse{
		NearExpiry:          toBatchList(report.NearExpiry, today),
		LowStock:            toBatchList(report.LowStock, today),
		ControlledAttention: toBatchList(report.ControlledAttention, today),
		Note:                report.Note,
	})
}

// Checklist godoc
// @Summary      Checklist de conteo físico
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Param        format  query     string  false  "json | pdf | excel"
// @Success      200     {array}   dto.ChecklistItemResponse
// @Router       /api/alerts/checklist [get]
func (h *AlertsHandler) Checklist(c *fiber.Ctx) error {
	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	items, err := h.stock.Checklist(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	today := time.Now()
	if format == reports.FormatJSON {
		return c.JSON(toChecklist(items, today))
	}
	doc := reports.ChecklistDocument(items, today, GetUsername(c))
	f, err := h.documents.Export(c.UserContext(), doc, format, "Inventory_Checklist")
	if err != nil {
		return handleError(c, h.log, err)
	}
	return sendFile(c, f)
}

// Reconcile godoc
// @Summary      Conciliar lote con el conteo físico
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReconcileRequest  true  "batch_id y physical_count"
// @Success      200   {object}  dto.ReconcileResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/alerts/reconcile [post]
func (h *AlertsHandler) Reconcile(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReconcileRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	res, err := h.ledger.Reconcile(c.UserContext(), actor, in.BatchID, *in.PhysicalCount)
	if err != nil {
		return handleError(c, h.log, err)
	}
	out := dto.ReconcileResponse{Status: "no change", NewQty: res.Batch.Quantity}
	if res.Changed {
		mov := toMovementResponse(res.Movement)
		out.Status = "reconciled"
		out.Delta = res.Delta
		out.Movement = &mov
	}
	return c.JSON(out)
}
