package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/analytics"
	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// SalesHandler analítica de ventas y reporte exportable (protegido).
type SalesHandler struct {
	uc        *analytics.SalesUseCase
	documents *reports.DocumentUseCase
	log       *logger.Logger
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *analytics.SalesUseCase, documents *reports.DocumentUseCase, log *logger.Logger) *SalesHandler {
	return &SalesHandler{uc: uc, documents: documents, log: log}
}

func (h *SalesHandler) period(c *fiber.Ctx) (dto.SalesQuery, analytics.Period, error) {
	var q dto.SalesQuery
	if err := queryAndValidate(c, &q); err != nil {
		return q, analytics.Period{}, err
	}
	from, to, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return q, analytics.Period{}, err
	}
	return q, analytics.Period{From: from, To: to}, nil
}

// MySales godoc
// @Summary      Mis ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Success      200         {object}  dto.MySalesDTO
// @Router       /api/sales/my-sales [get]
func (h *SalesHandler) MySales(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	_, period, err := h.period(c)
	if err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.uc.MySales(c.UserContext(), actor, period)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// AdminOverview godoc
// @Summary      Resumen de ventas y utilidad (admin)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        user_id     query     string  false  "filtrar por usuario"
// @Success      200         {object}  dto.AdminOverviewDTO
// @Router       /api/sales/admin/overview [get]
func (h *SalesHandler) AdminOverview(c *fiber.Ctx) error {
	q, period, err := h.period(c)
	if err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.uc.AdminOverview(c.UserContext(), period, q.UserID)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExportReport godoc
// @Summary      Exportar reporte de ventas y utilidad (admin)
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        format      query  string  true   "excel | pdf"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        user_id     query  string  false  "filtrar por usuario"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/export-report [get]
func (h *SalesHandler) ExportReport(c *fiber.Ctx) error {
	q, period, err := h.period(c)
	if err != nil {
		return handleError(c, h.log, err)
	}
	format, err := reports.ParseFormat(q.Format)
	if err != nil {
		return handleError(c, h.log, err)
	}
	if format == reports.FormatJSON {
		return handleError(c, h.log, fmt.Errorf("format must be excel or pdf: %w", domain.ErrInvalidInput))
	}
	lines, err := h.uc.ReportLines(c.UserContext(), period, q.UserID)
	if err != nil {
		return handleError(c, h.log, err)
	}
	doc := reports.SalesReportDocument(lines, period.From, period.To)
	f, err := h.documents.Export(c.UserContext(), doc, format, "Sales_Report")
	if err != nil {
		return handleError(c, h.log, err)
	}
	return sendFile(c, f)
}
