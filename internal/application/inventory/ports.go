package inventory

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Batches   repository.BatchRepository
	Products  repository.ProductRepository
	Suppliers repository.SupplierRepository
	Movements repository.MovementRepository
	Sales     repository.SaleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o el commit falla) ningún cambio queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
