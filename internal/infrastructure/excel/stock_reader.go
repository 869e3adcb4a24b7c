package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
)

var _ inventory.SheetReader = (*StockReader)(nil)

// Nombres aceptados por columna (normalizados: minúsculas, sin espacios ni guiones).
var headerAliases = map[string]string{
	"brandname": "brand", "brand": "brand", "product": "brand", "productname": "brand", "medicine": "brand",
	"batchnumber": "batch", "batch": "batch", "batchno": "batch", "lot": "batch",
	"expirydate": "expiry", "expiry": "expiry", "expires": "expiry",
	"quantity": "qty", "qty": "qty",
	"buyingprice": "buying", "costprice": "buying", "cost": "buying",
	"unitprice": "selling", "sellingprice": "selling", "price": "selling",
	"supplier": "supplier", "suppliername": "supplier",
}

var requiredColumns = []string{"brand", "batch", "expiry", "qty"}

// StockReader lee planillas de recepción. La primera fila no vacía es el encabezado.
type StockReader struct{}

// NewStockReader construye el lector.
func NewStockReader() *StockReader { return &StockReader{} }

// ReadRows detecta el formato por extensión (.xlsx o .csv) y devuelve filas válidas y fallos por línea.
// Line es el número de fila en la planilla (1 = encabezado).
func (s *StockReader) ReadRows(r io.Reader, filename string) ([]inventory.ImportRow, []inventory.ImportFailure, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSX(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q (use .xlsx or .csv)", filepath.Ext(filename))
	}
	if err != nil {
		return nil, nil, err
	}
	return parseRecords(records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSV acepta UTF-8 o ISO-8859-1 (exportaciones de Excel en Windows) y separador coma o punto y coma.
func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if firstLine, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(h)
}

func parseRecords(records [][]string) ([]inventory.ImportRow, []inventory.ImportFailure, error) {
	headerIdx := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}
	cols := map[string]int{}
	for i, h := range records[headerIdx] {
		if key, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	rows := []inventory.ImportRow{}
	failures := []inventory.ImportFailure{}
	for i := headerIdx + 1; i < len(records); i++ {
		rec := records[i]
		if isBlank(rec) {
			continue
		}
		line := i + 1
		row, err := parseRow(rec, cols)
		if err != nil {
			failures = append(failures, inventory.ImportFailure{Line: line, Reason: err.Error()})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, failures, nil
}

func parseRow(rec []string, cols map[string]int) (inventory.ImportRow, error) {
	get := func(key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}
	row := inventory.ImportRow{
		BrandName:    get("brand"),
		BatchNumber:  get("batch"),
		SupplierName: get("supplier"),
		BuyingPrice:  decimal.Zero,
		UnitPrice:    decimal.Zero,
	}
	if row.BrandName == "" || row.BatchNumber == "" {
		return row, fmt.Errorf("brand name and batch number are required")
	}
	expiry, err := parseDate(get("expiry"))
	if err != nil {
		return row, err
	}
	row.ExpiryDate = expiry

	qty, err := strconv.Atoi(strings.ReplaceAll(get("qty"), ",", ""))
	if err != nil {
		// planillas que guardan enteros como "10.0"
		d, derr := decimal.NewFromString(get("qty"))
		if derr != nil || !d.Equal(d.Truncate(0)) {
			return row, fmt.Errorf("invalid quantity %q", get("qty"))
		}
		qty = int(d.IntPart())
	}
	row.Quantity = qty

	if row.BuyingPrice, err = parseMoney(get("buying")); err != nil {
		return row, fmt.Errorf("invalid buying price: %w", err)
	}
	if row.UnitPrice, err = parseMoney(get("selling")); err != nil {
		return row, fmt.Errorf("invalid unit price: %w", err)
	}
	return row, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", "02-01-2006", "01-02-06", "2006-01-02 15:04:05"}

// parseDate acepta ISO, dd/mm/aaaa y números de serie de Excel.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("expiry date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid expiry date %q", s)
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
