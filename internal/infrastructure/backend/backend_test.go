package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/backend"
	"github.com/jhoicas/pharmacy-api/pkg/config"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

func TestOpen_MemoriaCompartidaConTx(t *testing.T) {
	ctx := context.Background()
	b, err := backend.Open(ctx, config.DBConfig{Driver: "memory"}, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Products.Create(ctx, &entity.Product{ID: "p-1", BrandName: "Panadol"}))
	err = b.TxRunner.Run(ctx, func(repos inventory.Repos) error {
		p, err := repos.Products.GetByID(ctx, "p-1")
		require.NoError(t, err)
		assert.NotNil(t, p, "la tx debe ver los mismos datos que los repositorios")
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := backend.Open(context.Background(), config.DBConfig{Driver: "sqlite"}, logger.Nop())
	assert.Error(t, err)
}
