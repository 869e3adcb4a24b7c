package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
)

func TestRun_RollbackConservaEscriturasExternas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	started := make(chan struct{})
	release := make(chan struct{})
	runErr := make(chan error, 1)
	go func() {
		runErr <- store.Run(ctx, func(repos inventory.Repos) error {
			if err := repos.Products.Create(ctx, &entity.Product{ID: "p-1", BrandName: "Panadol"}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("fallo forzado")
		})
	}()
	<-started

	created := make(chan error, 1)
	go func() {
		created <- store.Users().Create(ctx, &entity.User{ID: "u-2", Username: "cajero", Role: entity.RoleStaff, Active: true})
	}()

	// La escritura externa espera a que termine la transacción abierta.
	select {
	case err := <-created:
		t.Fatalf("la escritura externa no debe completarse durante la transacción: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-runErr)
	require.NoError(t, <-created)

	u, err := store.Users().GetByID(ctx, "u-2")
	require.NoError(t, err)
	require.NotNil(t, u, "el usuario creado fuera de la transacción debe sobrevivir al rollback")
	assert.Equal(t, "cajero", u.Username)

	p, err := store.Products().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, p, "el producto de la transacción fallida se deshace")
}

func TestRun_CommitVisibleFueraDeLaTransaccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Run(ctx, func(repos inventory.Repos) error {
		return repos.Suppliers.Create(ctx, &entity.Supplier{ID: "s-1", Name: "Acme"})
	}))

	sup, err := store.Suppliers().GetByID(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, sup)
	assert.Equal(t, "Acme", sup.Name)
}
