package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
)

// stubRenderer devuelve bytes fijos o un error.
type stubRenderer struct {
	err  error
	last *reports.Document
}

func (s *stubRenderer) Render(_ context.Context, doc *reports.Document) ([]byte, error) {
	s.last = doc
	if s.err != nil {
		return nil, s.err
	}
	return []byte("doc"), nil
}

type stubReceipts struct {
	err  error
	last *reports.Receipt
}

func (s *stubReceipts) RenderReceipt(_ context.Context, r *reports.Receipt) ([]byte, error) {
	s.last = r
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF"), nil
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]reports.Format{"": reports.FormatJSON, "PDF": reports.FormatPDF, "xlsx": reports.FormatExcel, "excel": reports.FormatExcel} {
		got, err := reports.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := reports.ParseFormat("docx")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSalesReportDocument_FilaTotales(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	doc := reports.SalesReportDocument([]entity.SalesReportLine{
		{Date: day, ReceiptNumber: "R1", ClientName: "Ann", Username: "staff1", Revenue: decimal.NewFromInt(100), Profit: decimal.NewFromInt(40)},
		{Date: day, ReceiptNumber: "R2", Revenue: decimal.NewFromInt(50), Profit: decimal.NewFromInt(10)},
	}, nil, nil)

	require.Len(t, doc.Rows, 3)
	assert.Equal(t, entity.DefaultClientName, doc.Rows[1].Cells[2])
	assert.Equal(t, "System", doc.Rows[1].Cells[3])
	totals := doc.Rows[2]
	assert.True(t, totals.Emphasis)
	assert.Equal(t, []string{"TOTALS", "2 Sales", "-", "-", "150.00", "50.00"}, totals.Cells)
}

func TestSalesReportDocument_SinDatos(t *testing.T) {
	doc := reports.SalesReportDocument(nil, nil, nil)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, reports.NoDataFound, doc.Rows[0].Cells[0])
}

func TestDDARegisterDocument_Columnas(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	doc := reports.DDARegisterDocument([]domaininv.RegisterEntry{
		{Date: from, BrandName: "Morphine", BatchNumber: "M1", EntryType: domaininv.EntryIn, Entity: "Acme", QuantityIn: 10, Balance: 10, Username: "ann"},
		{Date: from, BrandName: "Morphine", BatchNumber: "M1", EntryType: domaininv.EntryOut, Entity: "Walk-in Client", Reference: "RCPT-1", QuantityOut: 4, Balance: 6, Username: "ann"},
	}, &from, &to)

	assert.Equal(t, reports.TitleDDARegister, doc.Title)
	assert.Equal(t, "Period: 2026-01-01 to 2026-01-31", doc.Subtitle)
	assert.True(t, doc.Landscape)
	headers := make([]string, 0, len(doc.Columns))
	for _, c := range doc.Columns {
		headers = append(headers, c.Header)
	}
	assert.Equal(t, []string{"Date", "Medication", "Type", "Entity", "Ref", "Qty", "Balance", "User"}, headers)
	assert.Equal(t, []string{"2026-01-01", "Morphine (M1)", "OUT", "Walk-in Client", "RCPT-1", "4", "6", "ann"}, doc.Rows[1].Cells)
}

func TestChecklistDocument_ColumnaConteoEnBlanco(t *testing.T) {
	b := &entity.BatchDetail{Batch: entity.Batch{BatchNumber: "P-1", Quantity: 7, ExpiryDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)}, BrandName: "Panadol"}
	doc := reports.ChecklistDocument([]inventory.ChecklistItem{{Batch: b, AlertType: domaininv.ChecklistHealthy}}, time.Now(), "ann")
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, []string{"Panadol", "P-1", "2027-01-01", "7", reports.PhysicalCountBlank}, doc.Rows[0].Cells)
	assert.Equal(t, "Physical Count", doc.Columns[4].Header)
}

func TestExport_FallaDelRenderizadorEsErrRender(t *testing.T) {
	store := memory.NewStore()
	failing := &stubRenderer{err: errors.New("font missing")}
	uc := reports.NewDocumentUseCase(store.Sales(), failing, &stubRenderer{}, &stubReceipts{}, reports.Config{})

	_, err := uc.Export(context.Background(), reports.SalesReportDocument(nil, nil, nil), reports.FormatPDF, "sales_report")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRender))
}

func TestExport_NombreYTipoDeArchivo(t *testing.T) {
	store := memory.NewStore()
	xl := &stubRenderer{}
	uc := reports.NewDocumentUseCase(store.Sales(), &stubRenderer{}, xl, &stubReceipts{}, reports.Config{})

	doc := reports.SalesReportDocument(nil, nil, nil)
	doc.GeneratedAt = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	f, err := uc.Export(context.Background(), doc, reports.FormatExcel, "sales_report")
	require.NoError(t, err)
	assert.Equal(t, "sales_report_20260504.xlsx", f.Name)
	assert.Equal(t, reports.ContentTypeXLSX, f.ContentType)
	assert.Same(t, doc, xl.last)

	_, err = uc.Export(context.Background(), doc, reports.FormatJSON, "x")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestReprint_VentaInexistente(t *testing.T) {
	store := memory.NewStore()
	uc := reports.NewDocumentUseCase(store.Sales(), &stubRenderer{}, &stubRenderer{}, &stubReceipts{}, reports.Config{})
	_, err := uc.Reprint(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReprint_UsaLaVentaPersistida(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tx := &entity.SalesTransaction{
		ID: "tx-1", ReceiptNumber: "RCPT-20260101-AAAA0001", ClientName: "Ann",
		TotalAmount: decimal.NewFromInt(30), UserID: "u1", CreatedAt: time.Now(),
	}
	require.NoError(t, store.Sales().CreateTransaction(ctx, tx))

	receipts := &stubReceipts{}
	uc := reports.NewDocumentUseCase(store.Sales(), &stubRenderer{}, &stubRenderer{}, receipts, reports.Config{PharmacyName: "Uptown"})
	f, err := uc.Reprint(ctx, "tx-1")
	require.NoError(t, err)

	assert.Equal(t, "receipt_RCPT-20260101-AAAA0001.pdf", f.Name)
	require.NotNil(t, receipts.last)
	assert.True(t, receipts.last.Reprint)
	assert.Equal(t, "KES", receipts.last.Currency)
	assert.Equal(t, "Staff", receipts.last.ServedBy)
}
