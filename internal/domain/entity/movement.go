package entity

import "time"

// MovementType tipo de movimiento del libro de inventario.
type MovementType string

const (
	MovementReceive   MovementType = "RECEIVE"
	MovementSale      MovementType = "SALE"
	MovementReconcile MovementType = "RECONCILE"
)

// Movement registro inmutable de un cambio de cantidad en un lote.
// Delta lleva signo: positivo en entradas, negativo en salidas.
type Movement struct {
	ID            string
	BatchID       string
	Type          MovementType
	Delta         int
	Reason        string
	UserID        string
	TransactionID *string // venta que originó el movimiento, si aplica
	CreatedAt     time.Time
}

// MovementRecord movimiento con datos legibles para la auditoría.
type MovementRecord struct {
	Movement
	BrandName   string
	BatchNumber string
	Username    string
}

// LedgerMovement movimiento enriquecido para reconstruir el registro DDA.
type LedgerMovement struct {
	Movement
	ProductID     string
	BrandName     string
	BatchNumber   string
	Username      string
	SupplierName  string
	ClientName    string
	ReceiptNumber string
}
