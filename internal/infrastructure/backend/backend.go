// Package backend abre el almacenamiento elegido por DB_DRIVER y expone sus repositorios.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pharmacy-api/pkg/config"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// Backend repositorios y TxRunner de un mismo almacenamiento.
type Backend struct {
	Products  repository.ProductRepository
	Generics  repository.GenericRepository
	Suppliers repository.SupplierRepository
	Batches   repository.BatchRepository
	Movements repository.MovementRepository
	Sales     repository.SaleRepository
	Analytics repository.AnalyticsRepository
	Users     repository.UserRepository
	TxRunner  inventory.TxRunner

	close func()
}

// Close libera conexiones; no-op en memoria.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open conecta al driver configurado. Con postgres aplica el esquema si AutoMigrate está activo.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Backend, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("DB_DRIVER=memory: los datos no se persisten")
		return NewMemory(memory.NewStore()), nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema aplicado")
		}
		return &Backend{
			Products:  postgres.NewProductRepository(pool),
			Generics:  postgres.NewGenericRepository(pool),
			Suppliers: postgres.NewSupplierRepository(pool),
			Batches:   postgres.NewBatchRepository(pool),
			Movements: postgres.NewMovementRepository(pool),
			Sales:     postgres.NewSaleRepository(pool),
			Analytics: postgres.NewAnalyticsRepository(pool),
			Users:     postgres.NewUserRepository(pool),
			TxRunner:  postgres.NewTxRunner(pool),
			close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("DB_DRIVER desconocido %q", cfg.Driver)
	}
}

// NewMemory envuelve un store en memoria.
func NewMemory(store *memory.Store) *Backend {
	return &Backend{
		Products:  store.Products(),
		Generics:  store.Generics(),
		Suppliers: store.Suppliers(),
		Batches:   store.Batches(),
		Movements: store.Movements(),
		Sales:     store.Sales(),
		Analytics: store.Analytics(),
		Users:     store.Users(),
		TxRunner:  store,
	}
}
