package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultClientName cliente usado cuando la venta no trae nombre.
const DefaultClientName = "Walk-in Client"

// SalesTransaction agrupa las líneas vendidas bajo un mismo recibo.
type SalesTransaction struct {
	ID            string
	ReceiptNumber string
	ClientName    string
	TotalAmount   decimal.Decimal
	UserID        string
	Username      string // solo lectura (join)
	CreatedAt     time.Time
	Items         []SaleItem
	Prescription  *PrescriptionDetail
}

// SaleItem línea de venta. UnitPrice es el precio vigente al momento de vender.
type SaleItem struct {
	ID            string
	TransactionID string
	BatchID       string
	BrandName     string // solo lectura (join)
	BatchNumber   string // solo lectura (join)
	Quantity      int
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// PrescriptionDetail datos clínicos de una venta con receta.
type PrescriptionDetail struct {
	ID                 string
	TransactionID      string
	PatientAge         string
	PatientSex         string
	PrescriberName     string
	MedicalInstitution string
	DosageInstructions string
}

// HasClinicalData indica si se informó algún dato clínico.
func (p PrescriptionDetail) HasClinicalData() bool {
	for _, s := range []string{p.PatientAge, p.PatientSex, p.PrescriberName, p.MedicalInstitution, p.DosageInstructions} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
