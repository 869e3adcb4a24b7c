package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.GenericRepository  = (*GenericRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx bool
}

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) withGeneric(p entity.Product) *entity.Product {
	if p.GenericID != nil {
		if g, ok := r.s.data.generics[*p.GenericID]; ok {
			p.GenericName = g.Name
		}
	}
	return &p
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.tx)()
	for _, other := range r.s.data.products {
		if other.BrandName == p.BrandName {
			return conflict(fmt.Sprintf("product %q", p.BrandName))
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return r.withGeneric(p), nil
}

func (r *ProductRepo) GetByBrandName(_ context.Context, brandName string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.products {
		if strings.EqualFold(p.BrandName, brandName) {
			return r.withGeneric(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	for id, other := range r.s.data.products {
		if id != p.ID && other.BrandName == p.BrandName {
			return conflict(fmt.Sprintf("product %q", p.BrandName))
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	list := make([]*entity.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		full := r.withGeneric(p)
		if search != "" && !strings.Contains(strings.ToLower(full.BrandName), search) &&
			!strings.Contains(strings.ToLower(full.GenericName), search) {
			continue
		}
		list = append(list, full)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BrandName < list[j].BrandName })
	return paginate(list, limit, offset), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	for _, b := range r.s.data.batches {
		if b.ProductID == id {
			return fmt.Errorf("product %s has batches: %w", id, domain.ErrConflict)
		}
	}
	delete(r.s.data.products, id)
	return nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// GenericRepo nombres genéricos en memoria.
type GenericRepo struct {
	s  *Store
	tx bool
}

// Generics devuelve el repositorio de genéricos.
func (s *Store) Generics() *GenericRepo { return &GenericRepo{s: s} }

func (r *GenericRepo) Create(_ context.Context, g *entity.GenericDrug) error {
	defer r.s.lock(r.tx)()
	for _, other := range r.s.data.generics {
		if other.Name == g.Name {
			return conflict(fmt.Sprintf("generic %q", g.Name))
		}
	}
	r.s.data.generics[g.ID] = *g
	return nil
}

func (r *GenericRepo) GetByID(_ context.Context, id string) (*entity.GenericDrug, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.data.generics[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GenericRepo) Update(_ context.Context, g *entity.GenericDrug) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.generics[g.ID]; !ok {
		return fmt.Errorf("generic %s: %w", g.ID, domain.ErrNotFound)
	}
	for id, other := range r.s.data.generics {
		if id != g.ID && other.Name == g.Name {
			return conflict(fmt.Sprintf("generic %q", g.Name))
		}
	}
	r.s.data.generics[g.ID] = *g
	return nil
}

func (r *GenericRepo) List(_ context.Context) ([]*entity.GenericDrug, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.GenericDrug, 0, len(r.s.data.generics))
	for _, g := range r.s.data.generics {
		g := g
		list = append(list, &g)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete elimina el genérico; los productos que lo referencian quedan sin genérico (SET NULL).
func (r *GenericRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.generics[id]; !ok {
		return fmt.Errorf("generic %s: %w", id, domain.ErrNotFound)
	}
	for pid, p := range r.s.data.products {
		if p.GenericID != nil && *p.GenericID == id {
			p.GenericID = nil
			r.s.data.products[pid] = p
		}
	}
	delete(r.s.data.generics, id)
	return nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s  *Store
	tx bool
}

// Suppliers devuelve el repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	defer r.s.lock(r.tx)()
	for _, other := range r.s.data.suppliers {
		if other.Name == sup.Name {
			return conflict(fmt.Sprintf("supplier %q", sup.Name))
		}
	}
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sup, nil
}

func (r *SupplierRepo) GetByName(_ context.Context, name string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sup := range r.s.data.suppliers {
		if strings.EqualFold(sup.Name, name) {
			sup := sup
			return &sup, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.suppliers[sup.ID]; !ok {
		return fmt.Errorf("supplier %s: %w", sup.ID, domain.ErrNotFound)
	}
	for id, other := range r.s.data.suppliers {
		if id != sup.ID && other.Name == sup.Name {
			return conflict(fmt.Sprintf("supplier %q", sup.Name))
		}
	}
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Supplier, 0, len(r.s.data.suppliers))
	for _, sup := range r.s.data.suppliers {
		sup := sup
		list = append(list, &sup)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete elimina el proveedor; los lotes conservan su historia sin proveedor (SET NULL).
func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.suppliers[id]; !ok {
		return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	for bid, b := range r.s.data.batches {
		if b.SupplierID != nil && *b.SupplierID == id {
			b.SupplierID = nil
			r.s.data.batches[bid] = b
		}
	}
	delete(r.s.data.suppliers, id)
	return nil
}
