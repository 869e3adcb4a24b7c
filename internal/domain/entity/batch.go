package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExpiryAlertDays días de anticipación para la alerta de vencimiento.
const DefaultExpiryAlertDays = 60

// PlaceholderBatchPrefix prefijo de lotes ficticios que se excluyen de alertas y conteos.
const PlaceholderBatchPrefix = "PLACEHOLDER-"

// Batch lote físico de un producto. Quantity nunca es negativa.
type Batch struct {
	ID              string
	ProductID       string
	SupplierID      *string
	BatchNumber     string
	ExpiryDate      time.Time
	Quantity        int
	BuyingPrice     decimal.Decimal
	UnitPrice       decimal.Decimal // precio de venta
	ExpiryAlertDays int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BatchDetail lote con los datos de producto y proveedor necesarios para listados y alertas.
type BatchDetail struct {
	Batch
	BrandName    string
	GenericName  string
	SupplierName string
	IsControlled bool
	ReorderLevel int
}
