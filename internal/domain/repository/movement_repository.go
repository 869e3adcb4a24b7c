package repository

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
)

// MovementRepository define el puerto para el libro de movimientos. Solo inserción y lectura:
// un movimiento nunca se actualiza ni se elimina.
type MovementRepository interface {
	Create(ctx context.Context, mov *entity.Movement) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, error)
	// ListForLedger devuelve movimientos en orden cronológico ascendente (created_at, id).
	ListForLedger(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerMovement, error)
}
