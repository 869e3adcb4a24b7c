package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository      = (*SaleRepo)(nil)
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s  *Store
	tx bool
}

// Sales devuelve el repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) CreateTransaction(_ context.Context, tx *entity.SalesTransaction) error {
	defer r.s.lock(r.tx)()
	for _, other := range r.s.data.sales {
		if other.ReceiptNumber == tx.ReceiptNumber {
			return conflict(fmt.Sprintf("receipt %q", tx.ReceiptNumber))
		}
	}
	stored := *tx
	stored.Items = nil
	stored.Prescription = nil
	r.s.data.sales[tx.ID] = stored
	r.s.data.saleOrder = append(r.s.data.saleOrder, tx.ID)
	return nil
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.sales[item.TransactionID]; !ok {
		return fmt.Errorf("transaction %s: %w", item.TransactionID, domain.ErrNotFound)
	}
	r.s.data.items = append(r.s.data.items, *item)
	return nil
}

func (r *SaleRepo) CreatePrescription(_ context.Context, p *entity.PrescriptionDetail) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.sales[p.TransactionID]; !ok {
		return fmt.Errorf("transaction %s: %w", p.TransactionID, domain.ErrNotFound)
	}
	if _, exists := r.s.data.prescriptions[p.TransactionID]; exists {
		return conflict("prescription for transaction " + p.TransactionID)
	}
	r.s.data.prescriptions[p.TransactionID] = *p
	return nil
}

// full arma la venta con líneas y receta. Requiere el lock tomado.
func (r *SaleRepo) full(tx entity.SalesTransaction) *entity.SalesTransaction {
	tx.Username = r.s.data.users[tx.UserID].Username
	tx.Items = []entity.SaleItem{}
	for _, it := range r.s.data.items {
		if it.TransactionID != tx.ID {
			continue
		}
		b := r.s.data.batches[it.BatchID]
		it.BatchNumber = b.BatchNumber
		it.BrandName = r.s.data.products[b.ProductID].BrandName
		tx.Items = append(tx.Items, it)
	}
	if p, ok := r.s.data.prescriptions[tx.ID]; ok {
		tx.Prescription = &p
	}
	return &tx
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.SalesTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.data.sales[id]
	if !ok {
		return nil, nil
	}
	return r.full(tx), nil
}

// filtered devuelve las ventas que cumplen el filtro, más recientes primero. Requiere el lock tomado.
func (s *Store) filteredSales(f repository.SalesFilter) []entity.SalesTransaction {
	var list []entity.SalesTransaction
	for i := len(s.data.saleOrder) - 1; i >= 0; i-- {
		tx := s.data.sales[s.data.saleOrder[i]]
		if f.UserID != "" && tx.UserID != f.UserID {
			continue
		}
		if !inRange(tx.CreatedAt, f.DateRange) {
			continue
		}
		list = append(list, tx)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (r *SaleRepo) List(_ context.Context, f repository.SalesFilter) ([]*entity.SalesTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*entity.SalesTransaction{}
	for _, tx := range r.s.filteredSales(f) {
		list = append(list, r.full(tx))
	}
	return list, nil
}

func (r *SaleRepo) PrescriptionBook(_ context.Context, f repository.DateRange) ([]*entity.PrescriptionBookEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*entity.PrescriptionBookEntry{}
	for _, tx := range r.s.filteredSales(repository.SalesFilter{DateRange: f}) {
		p, ok := r.s.data.prescriptions[tx.ID]
		if !ok {
			continue
		}
		full := r.full(tx)
		entry := &entity.PrescriptionBookEntry{
			TransactionID:      tx.ID,
			Date:               tx.CreatedAt,
			ReceiptNumber:      tx.ReceiptNumber,
			ClientName:         tx.ClientName,
			PrescriptionDetail: p,
		}
		for _, it := range full.Items {
			entry.Medicines = append(entry.Medicines, fmt.Sprintf("%s x%d", it.BrandName, it.Quantity))
		}
		list = append(list, entry)
	}
	return list, nil
}

// AnalyticsRepo agregados de ventas en memoria.
type AnalyticsRepo struct{ s *Store }

// Analytics devuelve el repositorio de analítica.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// itemProfit (precio capturado - precio de compra del lote) * cantidad. Requiere el lock tomado.
func (r *AnalyticsRepo) itemProfit(it entity.SaleItem) decimal.Decimal {
	buying := r.s.data.batches[it.BatchID].BuyingPrice
	return it.UnitPrice.Sub(buying).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (r *AnalyticsRepo) itemsOf(txID string) []entity.SaleItem {
	var out []entity.SaleItem
	for _, it := range r.s.data.items {
		if it.TransactionID == txID {
			out = append(out, it)
		}
	}
	return out
}

func (r *AnalyticsRepo) Summary(_ context.Context, f repository.SalesFilter) (entity.SalesSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := entity.SalesSummary{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, tx := range r.s.filteredSales(f) {
		sum.TransactionCount++
		for _, it := range r.itemsOf(tx.ID) {
			sum.Revenue = sum.Revenue.Add(it.Subtotal)
			sum.Profit = sum.Profit.Add(r.itemProfit(it))
		}
	}
	return sum, nil
}

func (r *AnalyticsRepo) DailySales(_ context.Context, f repository.SalesFilter) ([]entity.DailySales, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byDay := map[string]*entity.DailySales{}
	for _, tx := range r.s.filteredSales(f) {
		day := domaininv.DateOnly(tx.CreatedAt)
		key := day.Format("2006-01-02")
		if byDay[key] == nil {
			byDay[key] = &entity.DailySales{Date: day, Sales: decimal.Zero}
		}
		byDay[key].Sales = byDay[key].Sales.Add(tx.TotalAmount)
	}
	out := make([]entity.DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AnalyticsRepo) TopBrandsByProfit(_ context.Context, f repository.SalesFilter, limit int) ([]entity.BrandProfit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byBrand := map[string]decimal.Decimal{}
	for _, tx := range r.s.filteredSales(f) {
		for _, it := range r.itemsOf(tx.ID) {
			brand := r.s.data.products[r.s.data.batches[it.BatchID].ProductID].BrandName
			byBrand[brand] = byBrand[brand].Add(r.itemProfit(it))
		}
	}
	out := make([]entity.BrandProfit, 0, len(byBrand))
	for brand, profit := range byBrand {
		out = append(out, entity.BrandProfit{BrandName: brand, Profit: profit})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Profit.Equal(out[j].Profit) {
			return out[i].Profit.GreaterThan(out[j].Profit)
		}
		return out[i].BrandName < out[j].BrandName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalyticsRepo) ReportLines(_ context.Context, f repository.SalesFilter) ([]entity.SalesReportLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.SalesReportLine{}
	for _, tx := range r.s.filteredSales(f) {
		profit := decimal.Zero
		for _, it := range r.itemsOf(tx.ID) {
			profit = profit.Add(r.itemProfit(it))
		}
		out = append(out, entity.SalesReportLine{
			Date:          tx.CreatedAt,
			ReceiptNumber: tx.ReceiptNumber,
			ClientName:    tx.ClientName,
			Username:      r.s.data.users[tx.UserID].Username,
			Revenue:       tx.TotalAmount,
			Profit:        profit,
		})
	}
	return out, nil
}
