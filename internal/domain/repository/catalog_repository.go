package repository

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBrandName(ctx context.Context, brandName string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}

// GenericRepository define el puerto de persistencia para nombres genéricos.
type GenericRepository interface {
	Create(ctx context.Context, generic *entity.GenericDrug) error
	GetByID(ctx context.Context, id string) (*entity.GenericDrug, error)
	Update(ctx context.Context, generic *entity.GenericDrug) error
	List(ctx context.Context) ([]*entity.GenericDrug, error)
	Delete(ctx context.Context, id string) error
}

// SupplierRepository define el puerto de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByName(ctx context.Context, name string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context) ([]*entity.Supplier, error)
	Delete(ctx context.Context, id string) error
}
