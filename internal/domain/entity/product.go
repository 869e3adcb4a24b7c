package entity

import "time"

// Product marca comercial vendible. BrandName es único.
type Product struct {
	ID           string
	BrandName    string
	GenericID    *string
	GenericName  string // solo lectura (join)
	IsControlled bool   // sustancia controlada: requiere asiento en el registro DDA
	ReorderLevel int    // umbral de stock bajo
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultReorderLevel nivel de reorden cuando no se especifica.
const DefaultReorderLevel = 1

// GenericDrug principio activo (nombre genérico) agrupador de marcas.
type GenericDrug struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Supplier proveedor de lotes.
type Supplier struct {
	ID            string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	CreatedAt     time.Time
}
