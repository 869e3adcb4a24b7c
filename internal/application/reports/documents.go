package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
)

// Títulos fijos de los documentos.
const (
	TitleDDARegister      = "DANGEROUS DRUGS REGISTER (DDA)"
	TitlePrescriptionBook = "PRESCRIPTION REGISTER (TREATMENT RECORD BOOK)"
	TitleChecklist        = "Full Dispensary Inventory Checklist"
	TitleSalesReport      = "Pharmacy Sales & Profit Report"
	PhysicalCountBlank    = "__________"
	NoDataFound           = "No data found"
)

const dateLayout = "2006-01-02"

// periodLabel "Period: desde to hasta" o fallback si no hay rango.
func periodLabel(from, to *time.Time, fallback string) string {
	if from == nil && to == nil {
		return fallback
	}
	f, t := "...", "..."
	if from != nil {
		f = from.Format(dateLayout)
	}
	if to != nil {
		t = to.Format(dateLayout)
	}
	return fmt.Sprintf("Period: %s to %s", f, t)
}

// DDARegisterDocument registro de sustancias controladas con saldo acumulado.
func DDARegisterDocument(entries []domaininv.RegisterEntry, from, to *time.Time) *Document {
	doc := &Document{
		Title:    TitleDDARegister,
		Subtitle: periodLabel(from, to, "Complete Audit Trail"),
		Columns: []Column{
			{Header: "Date", Width: 1},
			{Header: "Medication", Width: 2},
			{Header: "Type", Width: 1, Align: AlignCenter},
			{Header: "Entity", Width: 2},
			{Header: "Ref", Width: 2},
			{Header: "Qty", Width: 1, Align: AlignRight},
			{Header: "Balance", Width: 1, Align: AlignRight},
			{Header: "User", Width: 2},
		},
		Landscape: true,
	}
	for _, e := range entries {
		qty := e.QuantityIn
		if e.EntryType == domaininv.EntryOut {
			qty = e.QuantityOut
		}
		doc.Rows = append(doc.Rows, Row{Cells: []string{
			e.Date.Format(dateLayout),
			fmt.Sprintf("%s (%s)", e.BrandName, e.BatchNumber),
			e.EntryType,
			e.Entity,
			e.Reference,
			strconv.Itoa(qty),
			strconv.Itoa(e.Balance),
			e.Username,
		}})
	}
	return doc
}

// PrescriptionBookDocument libro de recetas: una fila por venta con datos clínicos.
func PrescriptionBookDocument(entries []*entity.PrescriptionBookEntry, from, to *time.Time) *Document {
	doc := &Document{
		Title:    TitlePrescriptionBook,
		Subtitle: periodLabel(from, to, "Full Clinical History"),
		Columns: []Column{
			{Header: "Date", Width: 1},
			{Header: "Receipt", Width: 2},
			{Header: "Patient", Width: 2},
			{Header: "Prescriber", Width: 2},
			{Header: "Medicines", Width: 2},
			{Header: "Instructions", Width: 3},
		},
		Landscape: true,
	}
	for _, e := range entries {
		patient := e.ClientName
		if ageSex := strings.Trim(strings.TrimSpace(e.PatientAge)+"/"+strings.TrimSpace(e.PatientSex), "/"); ageSex != "" {
			patient = fmt.Sprintf("%s (%s)", patient, ageSex)
		}
		prescriber := e.PrescriberName
		if e.MedicalInstitution != "" {
			prescriber = strings.TrimSpace(prescriber + " - " + e.MedicalInstitution)
		}
		doc.Rows = append(doc.Rows, Row{Cells: []string{
			e.Date.Format(dateLayout),
			e.ReceiptNumber,
			patient,
			prescriber,
			strings.Join(e.Medicines, ", "),
			e.DosageInstructions,
		}})
	}
	return doc
}

// ChecklistDocument hoja de conteo físico con columna en blanco para anotar a mano.
func ChecklistDocument(items []inventory.ChecklistItem, auditDate time.Time, generatedBy string) *Document {
	doc := &Document{
		Title:    TitleChecklist,
		Subtitle: fmt.Sprintf("Audit Date: %s | Generated by: %s", auditDate.Format("02 Jan 2006"), generatedBy),
		Columns: []Column{
			{Header: "Brand Name", Width: 4},
			{Header: "Batch", Width: 2},
			{Header: "Expiry", Width: 2},
			{Header: "System Qty", Width: 2, Align: AlignRight},
			{Header: "Physical Count", Width: 2, Align: AlignCenter},
		},
	}
	for _, it := range items {
		doc.Rows = append(doc.Rows, Row{Cells: []string{
			it.Batch.BrandName,
			it.Batch.BatchNumber,
			it.Batch.ExpiryDate.Format(dateLayout),
			strconv.Itoa(it.Batch.Quantity),
			PhysicalCountBlank,
		}})
	}
	return doc
}

// SalesReportDocument una fila por venta más la fila TOTALS; sin ventas, una sola fila "No data found".
func SalesReportDocument(lines []entity.SalesReportLine, from, to *time.Time) *Document {
	doc := &Document{
		Title:    TitleSalesReport,
		Subtitle: periodLabel(from, to, "All sales"),
		Columns: []Column{
			{Header: "Date", Width: 2},
			{Header: "Receipt #", Width: 3},
			{Header: "Patient", Width: 2},
			{Header: "Staff", Width: 1},
			{Header: "Revenue", Width: 2, Align: AlignRight},
			{Header: "Profit", Width: 2, Align: AlignRight},
		},
	}
	if len(lines) == 0 {
		doc.Rows = []Row{{Cells: []string{NoDataFound, "", "", "", "", ""}}}
		return doc
	}
	revenue, profit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		client := l.ClientName
		if client == "" {
			client = entity.DefaultClientName
		}
		staff := l.Username
		if staff == "" {
			staff = "System"
		}
		doc.Rows = append(doc.Rows, Row{Cells: []string{
			l.Date.Format("2006-01-02 15:04"),
			l.ReceiptNumber,
			client,
			staff,
			l.Revenue.StringFixed(2),
			l.Profit.StringFixed(2),
		}})
		revenue = revenue.Add(l.Revenue)
		profit = profit.Add(l.Profit)
	}
	doc.Rows = append(doc.Rows, Row{Emphasis: true, Cells: []string{
		"TOTALS",
		fmt.Sprintf("%d Sales", len(lines)),
		"-",
		"-",
		revenue.StringFixed(2),
		profit.StringFixed(2),
	}})
	return doc
}

// ReceiptFromTransaction arma el recibo a partir de una venta persistida.
func ReceiptFromTransaction(tx *entity.SalesTransaction, pharmacyName, currency string) *Receipt {
	served := tx.Username
	if served == "" {
		served = "Staff"
	}
	r := &Receipt{
		PharmacyName:  pharmacyName,
		Currency:      currency,
		ReceiptNumber: tx.ReceiptNumber,
		ClientName:    tx.ClientName,
		ServedBy:      served,
		Date:          tx.CreatedAt,
		Total:         tx.TotalAmount,
	}
	for _, it := range tx.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:     it.BrandName,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
			Total:    it.Subtotal,
		})
	}
	return r
}
