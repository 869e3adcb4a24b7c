package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// Config datos de la farmacia impresos en los documentos.
type Config struct {
	PharmacyName string
	Currency     string
}

// DocumentUseCase renderiza documentos y recibos. No escribe en el almacén.
type DocumentUseCase struct {
	sales    repository.SaleRepository
	pdf      TableRenderer
	excel    TableRenderer
	receipts ReceiptRenderer
	cfg      Config
	now      func() time.Time
}

// NewDocumentUseCase construye el caso de uso de documentos.
func NewDocumentUseCase(sales repository.SaleRepository, pdf, excel TableRenderer, receipts ReceiptRenderer, cfg Config) *DocumentUseCase {
	if cfg.Currency == "" {
		cfg.Currency = "KES"
	}
	return &DocumentUseCase{sales: sales, pdf: pdf, excel: excel, receipts: receipts, cfg: cfg, now: time.Now}
}

// PrescriptionBook ventas con receta en el rango, más recientes primero.
func (uc *DocumentUseCase) PrescriptionBook(ctx context.Context, from, to *time.Time) ([]*entity.PrescriptionBookEntry, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("end date before start date: %w", domain.ErrInvalidInput)
	}
	return uc.sales.PrescriptionBook(ctx, repository.DateRange{From: from, To: to})
}

// Export renderiza doc en el formato pedido. baseName se usa para el nombre del archivo.
func (uc *DocumentUseCase) Export(ctx context.Context, doc *Document, format Format, baseName string) (*File, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = uc.now()
	}
	var (
		renderer    TableRenderer
		ext         string
		contentType string
	)
	switch format {
	case FormatPDF:
		renderer, ext, contentType = uc.pdf, "pdf", ContentTypePDF
	case FormatExcel:
		renderer, ext, contentType = uc.excel, "xlsx", ContentTypeXLSX
	default:
		return nil, fmt.Errorf("format %q is not a file format: %w", format, domain.ErrInvalidInput)
	}
	data, err := renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", baseName, domain.ErrRender, err)
	}
	return &File{
		Name:        fmt.Sprintf("%s_%s.%s", baseName, doc.GeneratedAt.Format("20060102"), ext),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Receipt ticket PDF de una venta recién creada.
func (uc *DocumentUseCase) Receipt(ctx context.Context, tx *entity.SalesTransaction) (*File, error) {
	return uc.renderReceipt(ctx, ReceiptFromTransaction(tx, uc.cfg.PharmacyName, uc.cfg.Currency))
}

// Reprint vuelve a generar el recibo de una venta existente.
func (uc *DocumentUseCase) Reprint(ctx context.Context, transactionID string) (*File, error) {
	tx, err := uc.sales.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, domain.ErrNotFound)
	}
	r := ReceiptFromTransaction(tx, uc.cfg.PharmacyName, uc.cfg.Currency)
	r.Reprint = true
	return uc.renderReceipt(ctx, r)
}

func (uc *DocumentUseCase) renderReceipt(ctx context.Context, r *Receipt) (*File, error) {
	data, err := uc.receipts.RenderReceipt(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w: %w", r.ReceiptNumber, domain.ErrRender, err)
	}
	return &File{
		Name:        "receipt_" + strings.ReplaceAll(r.ReceiptNumber, "/", "-") + ".pdf",
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}
