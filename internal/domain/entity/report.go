package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySales total vendido en un día.
type DailySales struct {
	Date  time.Time
	Sales decimal.Decimal
}

// BrandProfit utilidad agregada por marca.
type BrandProfit struct {
	BrandName string
	Profit    decimal.Decimal
}

// SalesSummary ingresos y utilidad de un conjunto de ventas.
type SalesSummary struct {
	Revenue          decimal.Decimal
	Profit           decimal.Decimal
	TransactionCount int
}

// SalesReportLine fila del reporte exportable de ventas.
type SalesReportLine struct {
	Date          time.Time
	ReceiptNumber string
	ClientName    string
	Username      string
	Revenue       decimal.Decimal
	Profit        decimal.Decimal
}

// PrescriptionBookEntry fila del libro de recetas.
type PrescriptionBookEntry struct {
	TransactionID string
	Date          time.Time
	ReceiptNumber string
	ClientName    string
	PrescriptionDetail
	Medicines []string
}
