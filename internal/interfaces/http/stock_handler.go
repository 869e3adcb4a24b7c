package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// StockHandler maneja entradas, dispensación, importación y registros regulatorios (protegido).
type StockHandler struct {
	ledger    *inventory.LedgerUseCase
	stock     *inventory.StockUseCase
	importer  *inventory.ImportUseCase
	documents *reports.DocumentUseCase
	log       *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.LedgerUseCase, stock *inventory.StockUseCase, importer *inventory.ImportUseCase, documents *reports.DocumentUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, stock: stock, importer: importer, documents: documents, log: log}
}

// List godoc
// @Summary      Listar lotes
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "marca, genérico o número de lote"
// @Param        in_stock  query  bool    false  "solo lotes con existencias"
// @Success      200  {array}   dto.BatchResponse
// @Router       /api/stock/ [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	list, err := h.stock.List(c.UserContext(), c.Query("search"), c.QueryBool("in_stock", false))
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(toBatchList(list, time.Now()))
}

// GetBatch godoc
// @Summary      Obtener lote
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/batches/{id} [get]
func (h *StockHandler) GetBatch(c *fiber.Ctx) error {
	d, err := h.stock.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	if d == nil {
		return handleError(c, h.log, domain.ErrNotFound)
	}
	return c.JSON(toBatchResponse(d, time.Now()))
}

// Receive godoc
// @Summary      Recibir stock
// @Description  Crea el lote si (producto, número de lote) no existe; si existe suma la cantidad. Registra un movimiento RECEIVE.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReceiveStockRequest  true  "lote recibido"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/ [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReceiveStockRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	expiry, err := parseDay(in.ExpiryDate)
	if err != nil {
		return handleError(c, h.log, err)
	}
	input := inventory.ReceiveInput{
		ProductID:       in.ProductID,
		SupplierID:      in.SupplierID,
		BatchNumber:     in.BatchNumber,
		Quantity:        in.Quantity,
		BuyingPrice:     in.BuyingPrice,
		UnitPrice:       in.UnitPrice,
		ExpiryAlertDays: in.ExpiryAlertDays,
	}
	if expiry != nil {
		input.ExpiryDate = *expiry
	}
	res, err := h.ledger.Receive(c.UserContext(), actor, input)
	if err != nil {
		return handleError(c, h.log, err)
	}
	d, err := h.stock.Get(c.UserContext(), res.Batch.ID)
	if err != nil || d == nil {
		d = &entity.BatchDetail{Batch: *res.Batch}
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.ReceiveResponse{
		Created:  res.Created,
		Batch:    toBatchResponse(d, time.Now()),
		Movement: toMovementResponse(res.Movement),
	})
}

// Sell godoc
// @Summary      Dispensar de un lote
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SellRequest  true  "batch_id y quantity"
// @Success      200   {object}  dto.SellResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/sell [post]
func (h *StockHandler) Sell(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SellRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	res, err := h.ledger.Sell(c.UserContext(), actor, in.BatchID, in.Quantity)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(dto.SellResponse{
		Message:      "sale recorded",
		RemainingQty: res.Batch.Quantity,
		Movement:     toMovementResponse(res.Movement),
		Warning:      res.Warning,
	})
}

// BulkSell godoc
// @Summary      Venta de varias líneas
// @Description  Todas las líneas se validan antes de escribir; si una falla no se persiste nada. Con ?format=pdf devuelve el recibo.
// @Description  Si la venta se guardó pero el recibo no pudo generarse responde 201 con la venta en JSON, X-Receipt-Error y una advertencia para reimprimir.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Produce      application/pdf
// @Param        format  query     string               false  "pdf para descargar el recibo"
// @Param        body    body      dto.BulkSellRequest  true   "líneas y datos de receta"
// @Success      201     {object}  dto.SaleResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/stock/bulk-sell [post]
func (h *StockHandler) BulkSell(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	var in dto.BulkSellRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	lines := make([]inventory.SaleLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.SaleLine{BatchID: it.BatchID, Quantity: it.Quantity})
	}
	res, err := h.ledger.BulkSell(c.UserContext(), actor, inventory.BulkSellInput{
		ClientName: in.ClientName,
		Prescription: entity.PrescriptionDetail{
			PatientAge:         in.PatientAge,
			PatientSex:         in.PatientSex,
			PrescriberName:     in.PrescriberName,
			MedicalInstitution: in.MedicalInstitution,
			DosageInstructions: in.DosageInstructions,
		},
		Lines: lines,
	})
	if err != nil {
		return handleError(c, h.log, err)
	}
	warnings := res.Warnings
	if format == reports.FormatPDF {
		c.Set("X-Receipt-Number", res.Transaction.ReceiptNumber)
		f, err := h.documents.Receipt(c.UserContext(), res.Transaction)
		if err == nil {
			return sendFile(c, f)
		}
		// La venta ya está confirmada; el recibo se reimprime desde auditoría.
		h.log.Error().Err(err).Str("transaction_id", res.Transaction.ID).Msg("venta registrada sin recibo")
		c.Set("X-Receipt-Error", "render failed")
		warnings = append(warnings, fmt.Sprintf("receipt could not be generated; reprint it from /api/audit/reprint/%s", res.Transaction.ID))
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(res.Transaction, warnings))
}

// Import godoc
// @Summary      Importar stock desde planilla (admin)
// @Description  XLSX o CSV (UTF-8 o ISO-8859-1). Cada fila válida pasa por Receive; las inválidas se reportan por línea.
// @Tags         stock
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "planilla"
// @Success      200   {object}  inventory.ImportSummary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/import [post]
func (h *StockHandler) Import(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "multipart field 'file' is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "file could not be read"})
	}
	defer f.Close()

	summary, err := h.importer.ImportFile(c.UserContext(), actor, f, fh.Filename)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(summary)
}

// DDALedger godoc
// @Summary      Registro de drogas peligrosas (DDA)
// @Description  Reconstruye el registro de productos controlados con saldo por producto. El saldo arranca en cero al inicio del rango.
// @Tags         registers
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        format      query     string  false  "json | pdf | excel"
// @Success      200         {object}  dto.LedgerResponse
// @Router       /api/stock/dda-ledger [get]
func (h *StockHandler) DDALedger(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if err := queryAndValidate(c, &q); err != nil {
		return handleError(c, h.log, err)
	}
	from, to, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return handleError(c, h.log, err)
	}
	format, err := reports.ParseFormat(q.Format)
	if err != nil {
		return handleError(c, h.log, err)
	}
	entries, err := h.ledger.RebuildLedger(c.UserContext(), inventory.LedgerQuery{ControlledOnly: true, From: from, To: to})
	if err != nil {
		return handleError(c, h.log, err)
	}
	if format == reports.FormatJSON {
		return c.JSON(dto.LedgerResponse{Entries: toRegisterEntries(entries), Note: ledgerNote})
	}
	f, err := h.documents.Export(c.UserContext(), reports.DDARegisterDocument(entries, from, to), format, "DDA_Register")
	if err != nil {
		return handleError(c, h.log, err)
	}
	return sendFile(c, f)
}

// PrescriptionBook godoc
// @Summary      Libro de recetas
// @Tags         registers
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        format      query     string  false  "json | pdf | excel"
// @Success      200         {array}   dto.PrescriptionEntryResponse
// @Router       /api/stock/prescription-book [get]
func (h *StockHandler) PrescriptionBook(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if err := queryAndValidate(c, &q); err != nil {
		return handleError(c, h.log, err)
	}
	from, to, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return handleError(c, h.log, err)
	}
	format, err := reports.ParseFormat(q.Format)
	if err != nil {
		return handleError(c, h.log, err)
	}
	entries, err := h.documents.PrescriptionBook(c.UserContext(), from, to)
	if err != nil {
		return handleError(c, h.log, err)
	}
	if format == reports.FormatJSON {
		return c.JSON(toPrescriptionEntries(entries))
	}
	f, err := h.documents.Export(c.UserContext(), reports.PrescriptionBookDocument(entries, from, to), format, "Prescription_Book")
	if err != nil {
		return handleError(c, h.log, err)
	}
	return sendFile(c, f)
}
