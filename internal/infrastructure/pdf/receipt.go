package pdf

// receipt.go: ticket de venta con go-pdf/fpdf en tamaño A6 (105mm × 148mm):
//   - Encabezado "PHARMACY RECEIPT" y nombre de la farmacia
//   - Fecha, cliente y número de recibo
//   - Tabla Item / Qty / Price / Total
//   - Total general en la moneda configurada
//   - "Served by" y mensaje de cierre

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jhoicas/pharmacy-api/internal/application/reports"
)

var _ reports.ReceiptRenderer = (*ReceiptRenderer)(nil)

// ReceiptRenderer implementa reports.ReceiptRenderer.
type ReceiptRenderer struct{}

// NewReceiptRenderer construye el generador de tickets.
func NewReceiptRenderer() *ReceiptRenderer { return &ReceiptRenderer{} }

// RenderReceipt genera el ticket y devuelve los bytes del PDF.
func (g *ReceiptRenderer) RenderReceipt(ctx context.Context, r *reports.Receipt) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 105, Ht: 148},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(true, 5)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 10

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 7, "PHARMACY RECEIPT", "", 1, "C", false, 0, "")
	if r.PharmacyName != "" {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW, 4, tr(r.PharmacyName), "", 1, "C", false, 0, "")
	}
	if r.Reprint {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, "REPRINT", "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, "Date: "+r.Date.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Client: "+r.ClientName), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Receipt No: "+r.ReceiptNumber, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.44
	col2 := contentW * 0.12
	col3 := contentW * 0.22
	col4 := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range r.Lines {
		name := []rune(l.Name)
		if len(name) > 18 {
			name = name[:18]
		}
		pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, formatAmount(l.Price.StringFixed(2)), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, formatAmount(l.Total.StringFixed(2)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("GRAND TOTAL: %s %s", r.Currency, formatAmount(r.Total.StringFixed(2))), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, tr("Served by: "+r.ServedBy), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your visit!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: escribir ticket: %w", err)
	}
	return buf.Bytes(), nil
}

// formatAmount inserta comas de miles en un monto con dos decimales.
// Ej: "25000.00" → "25,000.00", "-1234.50" → "-1,234.50"
func formatAmount(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + frac
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + frac
}
