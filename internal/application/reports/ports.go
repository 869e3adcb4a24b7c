// Package reports arma los documentos tabulares (registro DDA, libro de recetas, checklist,
// reporte de ventas) y los recibos, y los entrega a los renderizadores de infraestructura.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/domain"
)

// Format formato de salida de un documento.
type Format string

const (
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat interpreta el query param ?format=. Vacío equivale a JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported format %q: %w", s, domain.ErrInvalidInput)
	}
}

// Align alineación de una columna.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column columna de un documento. Width es la proporción en una grilla de 12.
type Column struct {
	Header string
	Width  int
	Align  Align
}

// Row fila de datos; Emphasis marca filas de totales.
type Row struct {
	Cells    []string
	Emphasis bool
}

// Document documento tabular independiente del formato.
type Document struct {
	Title       string
	Subtitle    string
	Columns     []Column
	Rows        []Row
	Landscape   bool
	GeneratedAt time.Time
}

// TableRenderer convierte un Document en bytes (PDF o planilla).
type TableRenderer interface {
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// ReceiptLine línea impresa en el recibo.
type ReceiptLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// Receipt datos del recibo de venta.
type Receipt struct {
	PharmacyName  string
	Currency      string
	ReceiptNumber string
	ClientName    string
	ServedBy      string
	Date          time.Time
	Lines         []ReceiptLine
	Total         decimal.Decimal
	Reprint       bool
}

// ReceiptRenderer genera el ticket PDF de una venta.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, r *Receipt) ([]byte, error)
}

// File archivo listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Content types de descarga.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
