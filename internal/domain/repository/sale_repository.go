package repository

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	CreateTransaction(ctx context.Context, tx *entity.SalesTransaction) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	CreatePrescription(ctx context.Context, p *entity.PrescriptionDetail) error
	// GetByID devuelve la venta con sus líneas y receta (si existe).
	GetByID(ctx context.Context, id string) (*entity.SalesTransaction, error)
	List(ctx context.Context, filter SalesFilter) ([]*entity.SalesTransaction, error)
	PrescriptionBook(ctx context.Context, filter DateRange) ([]*entity.PrescriptionBookEntry, error)
}

// AnalyticsRepository consultas de solo lectura para ingresos y utilidad.
// Utilidad = (precio de venta capturado - precio de compra del lote) * cantidad.
type AnalyticsRepository interface {
	Summary(ctx context.Context, filter SalesFilter) (entity.SalesSummary, error)
	DailySales(ctx context.Context, filter SalesFilter) ([]entity.DailySales, error)
	TopBrandsByProfit(ctx context.Context, filter SalesFilter, limit int) ([]entity.BrandProfit, error)
	// ReportLines una fila por venta, más recientes primero.
	ReportLines(ctx context.Context, filter SalesFilter) ([]entity.SalesReportLine, error)
}
