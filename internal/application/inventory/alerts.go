package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// AlertReport alertas del día. Los lotes de relleno (PLACEHOLDER-) no se consideran.
type AlertReport struct {
	NearExpiry          []*entity.BatchDetail
	LowStock            []*entity.BatchDetail
	ControlledAttention []*entity.BatchDetail
	Note                string
}

// ChecklistItem fila del checklist de auditoría física.
type ChecklistItem struct {
	Batch     *entity.BatchDetail
	AlertType string
}

// StockUseCase consultas de stock: listado, alertas y checklist. Las clasificaciones se calculan
// en cada lectura y no se persisten.
type StockUseCase struct {
	batches         repository.BatchRepository
	checklistWindow int
	now             func() time.Time
}

// NewStockUseCase construye el caso de uso. checklistWindowDays es la ventana de vencimiento del checklist.
func NewStockUseCase(batches repository.BatchRepository, checklistWindowDays int) *StockUseCase {
	if checklistWindowDays <= 0 {
		checklistWindowDays = entity.DefaultExpiryAlertDays
	}
	return &StockUseCase{batches: batches, checklistWindow: checklistWindowDays, now: time.Now}
}

// List devuelve los lotes (con producto) filtrados por texto.
func (uc *StockUseCase) List(ctx context.Context, search string, inStockOnly bool) ([]*entity.BatchDetail, error) {
	return uc.batches.ListDetails(ctx, repository.BatchFilter{Search: search, InStockOnly: inStockOnly})
}

// Get devuelve un lote con su producto.
func (uc *StockUseCase) Get(ctx context.Context, id string) (*entity.BatchDetail, error) {
	return uc.batches.GetDetail(ctx, id)
}

// Alerts clasifica los lotes en vencimiento próximo, stock bajo y controlados con existencias.
func (uc *StockUseCase) Alerts(ctx context.Context) (*AlertReport, error) {
	all, err := uc.batches.ListDetails(ctx, repository.BatchFilter{ExcludePlaceholders: true})
	if err != nil {
		return nil, err
	}
	today := uc.now()
	report := &AlertReport{
		NearExpiry:          []*entity.BatchDetail{},
		LowStock:            []*entity.BatchDetail{},
		ControlledAttention: []*entity.BatchDetail{},
		Note:                fmt.Sprintf("System scan complete for %s.", today.Format("02 Jan 2006")),
	}
	for _, d := range all {
		if domaininv.IsPlaceholder(d.BatchNumber) {
			continue
		}
		if domaininv.IsNearExpiry(&d.Batch, today) {
			report.NearExpiry = append(report.NearExpiry, d)
		}
		if domaininv.IsLowStock(d.Quantity, d.ReorderLevel) {
			report.LowStock = append(report.LowStock, d)
		}
		if d.IsControlled && d.Quantity > 0 {
			report.ControlledAttention = append(report.ControlledAttention, d)
		}
	}
	sort.SliceStable(report.NearExpiry, func(i, j int) bool {
		return report.NearExpiry[i].ExpiryDate.Before(report.NearExpiry[j].ExpiryDate)
	})
	sort.SliceStable(report.LowStock, func(i, j int) bool {
		return report.LowStock[i].Quantity < report.LowStock[j].Quantity
	})
	sort.SliceStable(report.ControlledAttention, func(i, j int) bool {
		return report.ControlledAttention[i].BrandName < report.ControlledAttention[j].BrandName
	})
	return report, nil
}

// Checklist todos los lotes con existencias, por marca, con su etiqueta de auditoría.
func (uc *StockUseCase) Checklist(ctx context.Context) ([]ChecklistItem, error) {
	all, err := uc.batches.ListDetails(ctx, repository.BatchFilter{InStockOnly: true, ExcludePlaceholders: true})
	if err != nil {
		return nil, err
	}
	today := uc.now()
	items := make([]ChecklistItem, 0, len(all))
	for _, d := range all {
		if d.Quantity <= 0 || domaininv.IsPlaceholder(d.BatchNumber) {
			continue
		}
		items = append(items, ChecklistItem{Batch: d, AlertType: domaininv.ChecklistLabel(d, today, uc.checklistWindow)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Batch.BrandName < items[j].Batch.BrandName })
	return items, nil
}
