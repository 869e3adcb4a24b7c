package repository

import "time"

// DateRange rango de fechas opcional (límites inclusivos, comparados por día).
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// BatchFilter filtros para listar lotes.
type BatchFilter struct {
	Search              string // marca, genérico o número de lote (ILIKE)
	InStockOnly         bool
	ControlledOnly      bool
	ExcludePlaceholders bool
}

// MovementFilter filtros para la auditoría de movimientos.
type MovementFilter struct {
	BatchNumber string
	Limit       int
}

// LedgerFilter filtros para reconstruir el registro DDA.
type LedgerFilter struct {
	ControlledOnly bool
	ProductID      string
	DateRange
}

// SalesFilter filtros para consultas de ventas y analítica.
type SalesFilter struct {
	UserID string
	DateRange
}
