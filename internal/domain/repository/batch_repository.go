package repository

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes (DIP).
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	// CreateIfAbsent inserta el lote salvo que (producto, número) ya exista; devuelve si lo insertó.
	CreateIfAbsent(ctx context.Context, batch *entity.Batch) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	GetByProductAndNumberForUpdate(ctx context.Context, productID, batchNumber string) (*entity.Batch, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	GetDetail(ctx context.Context, id string) (*entity.BatchDetail, error)
	ListDetails(ctx context.Context, filter BatchFilter) ([]*entity.BatchDetail, error)
}
