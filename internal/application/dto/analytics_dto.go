package dto

import "github.com/shopspring/decimal"

// SalesQuery parámetros de analítica: rango YYYY-MM-DD y filtro de usuario (solo administrador).
type SalesQuery struct {
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	UserID    string `query:"user_id" validate:"omitempty,uuid"`
	Format    string `query:"format" validate:"omitempty,oneof=json pdf excel xlsx"`
}

// ChartPointDTO ventas de un día para el gráfico de barras.
type ChartPointDTO struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Sales decimal.Decimal `json:"sales"`
}

// PieSliceDTO utilidad de una marca para el gráfico de torta.
type PieSliceDTO struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// SaleRecordDTO venta listada en "mis ventas".
type SaleRecordDTO struct {
	ID            string          `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	ClientName    string          `json:"client_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Date          string          `json:"date"`
	ItemCount     int             `json:"item_count"`
}

// MySalesDTO respuesta de GET /api/sales/my-sales.
type MySalesDTO struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TransactionCount int             `json:"transaction_count"`
	ChartData        []ChartPointDTO `json:"chart_data"`
	Records          []SaleRecordDTO `json:"records"`
}

// AdminOverviewDTO respuesta de GET /api/sales/admin/overview.
type AdminOverviewDTO struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TransactionCount int             `json:"transaction_count"`
	ChartData        []ChartPointDTO `json:"chart_data"`
	PieData          []PieSliceDTO   `json:"pie_data"`
}
