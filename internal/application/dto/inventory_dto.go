package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveStockRequest body para POST /api/stock/.
type ReceiveStockRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	SupplierID      string          `json:"supplier_id" validate:"omitempty,uuid"`
	BatchNumber     string          `json:"batch_number" validate:"required,max=100"`
	ExpiryDate      string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"` // obligatorio si el lote es nuevo
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	BuyingPrice     decimal.Decimal `json:"buying_price" validate:"gte=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" validate:"gte=0"`
	ExpiryAlertDays int             `json:"expiry_alert_days" validate:"omitempty,min=1,max=3650"`
}

// SellRequest body para POST /api/stock/sell.
type SellRequest struct {
	BatchID  string `json:"batch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// SaleLineRequest línea de una venta múltiple.
type SaleLineRequest struct {
	BatchID  string `json:"batch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// BulkSellRequest body para POST /api/stock/bulk-sell.
type BulkSellRequest struct {
	ClientName         string            `json:"client_name" validate:"omitempty,max=200"`
	PatientAge         string            `json:"patient_age" validate:"omitempty,max=20"`
	PatientSex         string            `json:"patient_sex" validate:"omitempty,max=20"`
	PrescriberName     string            `json:"prescriber_name" validate:"omitempty,max=200"`
	MedicalInstitution string            `json:"medical_institution" validate:"omitempty,max=200"`
	DosageInstructions string            `json:"dosage_instructions" validate:"omitempty,max=1000"`
	Items              []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

// ReconcileRequest body para POST /api/alerts/reconcile.
type ReconcileRequest struct {
	BatchID       string `json:"batch_id" validate:"required,uuid"`
	PhysicalCount *int   `json:"physical_count" validate:"required,min=0"`
}

// BatchResponse lote con su estado derivado.
type BatchResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	BrandName       string          `json:"brand_name"`
	GenericName     string          `json:"generic_name"`
	SupplierID      *string         `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	BatchNumber     string          `json:"batch_number"`
	ExpiryDate      string          `json:"expiry_date"`
	Quantity        int             `json:"quantity"`
	BuyingPrice     decimal.Decimal `json:"buying_price"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ExpiryAlertDays int             `json:"expiry_alert_days"`
	IsControlled    bool            `json:"is_controlled"`
	ReorderLevel    int             `json:"reorder_level"`
	Status          string          `json:"status"`
	NearExpiry      bool            `json:"near_expiry"`
	LowStock        bool            `json:"low_stock"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batch_id"`
	Type          string    `json:"type"`
	Delta         int       `json:"delta"`
	Reason        string    `json:"reason"`
	UserID        string    `json:"user_id"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReceiveResponse resultado de una entrada de stock.
type ReceiveResponse struct {
	Created  bool             `json:"created"`
	Batch    BatchResponse    `json:"batch"`
	Movement MovementResponse `json:"movement"`
}

// SellResponse resultado de una dispensación unitaria.
type SellResponse struct {
	Message      string           `json:"message"`
	RemainingQty int              `json:"remaining_qty"`
	Movement     MovementResponse `json:"movement"`
	Warning      string           `json:"warning,omitempty"`
}

// SaleItemResponse línea vendida.
type SaleItemResponse struct {
	BatchID     string          `json:"batch_id"`
	BrandName   string          `json:"brand_name"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID            string             `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	ClientName    string             `json:"client_name"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Username      string             `json:"username"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// ReconcileResponse resultado de un ajuste por conteo físico.
type ReconcileResponse struct {
	Status   string            `json:"status"` // "no change" | "reconciled"
	Delta    int               `json:"delta"`
	NewQty   int               `json:"new_qty"`
	Movement *MovementResponse `json:"movement,omitempty"`
}

// RegisterEntryResponse fila del registro DDA.
type RegisterEntryResponse struct {
	Date         time.Time `json:"date"`
	BrandName    string    `json:"brand_name"`
	BatchNumber  string    `json:"batch_number"`
	EntryType    string    `json:"entry_type"`
	MovementType string    `json:"movement_type"`
	Entity       string    `json:"entity"`
	Reference    string    `json:"reference"`
	QuantityIn   int       `json:"quantity_in"`
	QuantityOut  int       `json:"quantity_out"`
	Balance      int       `json:"balance"`
	Username     string    `json:"username"`
	Remarks      string    `json:"remarks"`
}

// LedgerResponse registro reconstruido más la advertencia sobre el saldo inicial.
type LedgerResponse struct {
	Entries []RegisterEntryResponse `json:"entries"`
	Note    string                  `json:"note"`
}

// PrescriptionEntryResponse fila del libro de recetas.
type PrescriptionEntryResponse struct {
	TransactionID      string    `json:"transaction_id"`
	Date               time.Time `json:"date"`
	ReceiptNumber      string    `json:"receipt_number"`
	ClientName         string    `json:"client_name"`
	PatientAge         string    `json:"patient_age"`
	PatientSex         string    `json:"patient_sex"`
	PrescriberName     string    `json:"prescriber_name"`
	MedicalInstitution string    `json:"medical_institution"`
	DosageInstructions string    `json:"dosage_instructions"`
	Medicines          []string  `json:"medicines"`
}

// AlertsResponse lotes que requieren atención.
type AlertsResponse struct {
	NearExpiry          []BatchResponse `json:"near_expiry"`
	LowStock            []BatchResponse `json:"low_stock"`
	ControlledAttention []BatchResponse `json:"controlled_attention"`
	Note                string          `json:"note"`
}

// ChecklistItemResponse fila de la planilla de conteo físico.
type ChecklistItemResponse struct {
	BatchResponse
	AlertType string `json:"alert_type"`
}

// AuditRecordResponse movimiento legible para la auditoría.
type AuditRecordResponse struct {
	ID           string    `json:"id"`
	DrugName     string    `json:"drug_name"`
	BatchNumber  string    `json:"batch_number"`
	MovementType string    `json:"movement_type"`
	Delta        int       `json:"delta"`
	Reason       string    `json:"reason"`
	Date         time.Time `json:"date"`
	Username     string    `json:"username"`
}
