package excel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/excel"
)

func TestTableRenderer_EscribeEncabezadosYFilas(t *testing.T) {
	doc := &reports.Document{
		Title:    reports.TitleSalesReport,
		Subtitle: "All sales",
		Columns:  []reports.Column{{Header: "Date", Width: 2}, {Header: "Revenue", Width: 2}},
		Rows: []reports.Row{
			{Cells: []string{"2026-01-01 10:00", "300.00"}},
			{Cells: []string{"TOTALS", "300.00"}, Emphasis: true},
		},
	}
	out, err := excel.NewTableRenderer().Render(context.Background(), doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Report")
	require.NoError(t, err)

	// título, subtítulo, blanco, encabezado, 2 filas
	require.Len(t, rows, 6)
	assert.Equal(t, reports.TitleSalesReport, rows[0][0])
	assert.Equal(t, []string{"Date", "Revenue"}, rows[3])
	assert.Equal(t, []string{"TOTALS", "300.00"}, rows[5])
}

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestStockReader_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Brand Name", "Batch Number", "Expiry Date", "Quantity", "Buying Price", "Unit Price", "Supplier"},
		{"Panadol", "P-1", "2027-03-31", "100", "2.50", "5.00", "Acme"},
		{"Amoxil", "", "2027-03-31", "10", "", "", ""},
		{"Brufen", "B-9", "not a date", "5", "", "", ""},
	})
	rows, failures, err := excel.NewStockReader().ReadRows(bytes.NewReader(data), "stock.xlsx")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Panadol", rows[0].BrandName)
	assert.Equal(t, 100, rows[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.00").Equal(rows[0].UnitPrice))
	assert.Equal(t, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), rows[0].ExpiryDate)
	assert.Equal(t, "Acme", rows[0].SupplierName)

	require.Len(t, failures, 2)
	assert.Equal(t, 3, failures[0].Line)
	assert.Equal(t, 4, failures[1].Line)
}

func TestStockReader_CSVLatin1(t *testing.T) {
	utf8CSV := "brand_name;batch_number;expiry_date;qty;supplier\nJarabe Niño;J-1;31/12/2027;12;Farmacéutica Sur\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(utf8CSV)
	require.NoError(t, err)

	rows, failures, err := excel.NewStockReader().ReadRows(bytes.NewReader([]byte(latin1)), "stock.CSV")
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jarabe Niño", rows[0].BrandName)
	assert.Equal(t, "Farmacéutica Sur", rows[0].SupplierName)
	assert.Equal(t, 12, rows[0].Quantity)
	assert.Equal(t, 2027, rows[0].ExpiryDate.Year())
}

func TestStockReader_ColumnasFaltantes(t *testing.T) {
	_, _, err := excel.NewStockReader().ReadRows(bytes.NewReader([]byte("brand,qty\nX,1\n")), "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}

func TestStockReader_ExtensionNoSoportada(t *testing.T) {
	_, _, err := excel.NewStockReader().ReadRows(bytes.NewReader(nil), "stock.ods")
	assert.Error(t, err)
}
