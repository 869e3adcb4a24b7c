package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso agregan contexto con fmt.Errorf("...: %w", ErrX); la capa HTTP clasifica con errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidState      = errors.New("operation not permitted in current state")
	ErrInsufficientStock = errors.New("insufficient stock quantity")
	ErrConflict          = errors.New("conflicts with an existing record")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrRender            = errors.New("document rendering failed")
	ErrStore             = errors.New("storage failure")
)
