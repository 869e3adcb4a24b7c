package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var (
	_ repository.BatchRepository    = (*BatchRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
)

// BatchRepo lotes en memoria. El bloqueo de fila lo da la serialización de Store.Run.
type BatchRepo struct {
	s  *Store
	tx bool
}

// Batches devuelve el repositorio de lotes.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.products[b.ProductID]; !ok {
		return fmt.Errorf("product %s: %w", b.ProductID, domain.ErrNotFound)
	}
	for _, other := range r.s.data.batches {
		if other.ProductID == b.ProductID && other.BatchNumber == b.BatchNumber {
			return conflict(fmt.Sprintf("batch %q", b.BatchNumber))
		}
	}
	r.s.data.batches[b.ID] = *b
	return nil
}

func (r *BatchRepo) CreateIfAbsent(_ context.Context, b *entity.Batch) (bool, error) {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.products[b.ProductID]; !ok {
		return false, fmt.Errorf("product %s: %w", b.ProductID, domain.ErrNotFound)
	}
	for _, other := range r.s.data.batches {
		if other.ProductID == b.ProductID && other.BatchNumber == b.BatchNumber {
			return false, nil
		}
	}
	r.s.data.batches[b.ID] = *b
	return true, nil
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.data.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) GetByProductAndNumberForUpdate(_ context.Context, productID, batchNumber string) (*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.data.batches {
		if b.ProductID == productID && b.BatchNumber == batchNumber {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *BatchRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	defer r.s.lock(r.tx)()
	b, ok := r.s.data.batches[id]
	if !ok {
		return fmt.Errorf("batch %s: %w", id, domain.ErrNotFound)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: batch %s quantity check constraint", domain.ErrStore, id)
	}
	b.Quantity = quantity
	b.UpdatedAt = r.s.now()
	r.s.data.batches[id] = b
	return nil
}

func (r *BatchRepo) detail(b entity.Batch) *entity.BatchDetail {
	d := &entity.BatchDetail{Batch: b}
	if p, ok := r.s.data.products[b.ProductID]; ok {
		d.BrandName = p.BrandName
		d.IsControlled = p.IsControlled
		d.ReorderLevel = p.ReorderLevel
		if p.GenericID != nil {
			d.GenericName = r.s.data.generics[*p.GenericID].Name
		}
	}
	if b.SupplierID != nil {
		d.SupplierName = r.s.data.suppliers[*b.SupplierID].Name
	}
	return d
}

func (r *BatchRepo) GetDetail(_ context.Context, id string) (*entity.BatchDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.data.batches[id]
	if !ok {
		return nil, nil
	}
	return r.detail(b), nil
}

func (r *BatchRepo) ListDetails(_ context.Context, f repository.BatchFilter) ([]*entity.BatchDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	list := make([]*entity.BatchDetail, 0, len(r.s.data.batches))
	for _, b := range r.s.data.batches {
		d := r.detail(b)
		if f.InStockOnly && d.Quantity <= 0 {
			continue
		}
		if f.ControlledOnly && !d.IsControlled {
			continue
		}
		if f.ExcludePlaceholders && domaininv.IsPlaceholder(d.BatchNumber) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.BrandName), search) &&
			!strings.Contains(strings.ToLower(d.GenericName), search) &&
			!strings.Contains(strings.ToLower(d.BatchNumber), search) {
			continue
		}
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].BrandName != list[j].BrandName {
			return list[i].BrandName < list[j].BrandName
		}
		return list[i].ExpiryDate.Before(list[j].ExpiryDate)
	})
	return list, nil
}

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	s  *Store
	tx bool
}

// Movements devuelve el repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.batches[m.BatchID]; !ok {
		return fmt.Errorf("batch %s: %w", m.BatchID, domain.ErrNotFound)
	}
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r *MovementRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Movement
	for _, m := range r.s.data.movements {
		if m.BatchID == batchID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*entity.MovementRecord{}
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		b := r.s.data.batches[m.BatchID]
		if f.BatchNumber != "" && b.BatchNumber != f.BatchNumber {
			continue
		}
		list = append(list, &entity.MovementRecord{
			Movement:    m,
			BrandName:   r.s.data.products[b.ProductID].BrandName,
			BatchNumber: b.BatchNumber,
			Username:    r.s.data.users[m.UserID].Username,
		})
		if f.Limit > 0 && len(list) >= f.Limit {
			break
		}
	}
	return list, nil
}

func (r *MovementRepo) ListForLedger(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*entity.LedgerMovement{}
	for _, m := range r.s.data.movements {
		b := r.s.data.batches[m.BatchID]
		p := r.s.data.products[b.ProductID]
		if f.ControlledOnly && !p.IsControlled {
			continue
		}
		if f.ProductID != "" && p.ID != f.ProductID {
			continue
		}
		if !inRange(m.CreatedAt, f.DateRange) {
			continue
		}
		lm := &entity.LedgerMovement{
			Movement:    m,
			ProductID:   p.ID,
			BrandName:   p.BrandName,
			BatchNumber: b.BatchNumber,
			Username:    r.s.data.users[m.UserID].Username,
		}
		if b.SupplierID != nil {
			lm.SupplierName = r.s.data.suppliers[*b.SupplierID].Name
		}
		if m.TransactionID != nil {
			if tx, ok := r.s.data.sales[*m.TransactionID]; ok {
				lm.ClientName = tx.ClientName
				lm.ReceiptNumber = tx.ReceiptNumber
			}
		}
		list = append(list, lm)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}
