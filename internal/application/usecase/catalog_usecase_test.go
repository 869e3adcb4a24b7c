package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/application/usecase"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
)

func TestProduct_CrearConGenerico(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	generics := usecase.NewGenericUseCase(store.Generics())
	products := usecase.NewProductUseCase(store.Products(), store.Generics())

	g, err := generics.Create(ctx, dto.GenericRequest{Name: "Paracetamol"})
	require.NoError(t, err)

	p, err := products.Create(ctx, dto.CreateProductRequest{BrandName: " Panadol ", GenericID: g.ID})
	require.NoError(t, err)
	assert.Equal(t, "Panadol", p.BrandName)
	assert.Equal(t, "Paracetamol", p.GenericName)
	assert.Equal(t, entity.DefaultReorderLevel, p.ReorderLevel)

	_, err = products.Create(ctx, dto.CreateProductRequest{BrandName: "Panadol"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestProduct_GenericoInexistente(t *testing.T) {
	store := memory.NewStore()
	products := usecase.NewProductUseCase(store.Products(), store.Generics())

	_, err := products.Create(context.Background(), dto.CreateProductRequest{BrandName: "Brufen", GenericID: "nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProduct_ActualizarYListar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := usecase.NewProductUseCase(store.Products(), store.Generics())
	p, err := products.Create(ctx, dto.CreateProductRequest{BrandName: "Morphine"})
	require.NoError(t, err)

	controlled, reorder := true, 10
	out, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{IsControlled: &controlled, ReorderLevel: &reorder})
	require.NoError(t, err)
	assert.True(t, out.IsControlled)
	assert.Equal(t, 10, out.ReorderLevel)

	negative := -1
	_, err = products.Update(ctx, p.ID, dto.UpdateProductRequest{ReorderLevel: &negative})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	list, err := products.List(ctx, "morph", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Page.Limit)

	_, err = products.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProduct_NoSeBorraConLotes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := usecase.NewProductUseCase(store.Products(), store.Generics())
	p, err := products.Create(ctx, dto.CreateProductRequest{BrandName: "Amoxil"})
	require.NoError(t, err)
	require.NoError(t, store.Batches().Create(ctx, &entity.Batch{
		ID: "b1", ProductID: p.ID, BatchNumber: "A1", ExpiryDate: time.Now().AddDate(1, 0, 0), Quantity: 5,
	}))

	assert.True(t, errors.Is(products.Delete(ctx, p.ID), domain.ErrConflict))
}

func TestSupplier_CRUD(t *testing.T) {
	ctx := context.Background()
	suppliers := usecase.NewSupplierUseCase(memory.NewStore().Suppliers())

	s, err := suppliers.Create(ctx, dto.SupplierRequest{Name: "MedSupply", Phone: "0700"})
	require.NoError(t, err)

	_, err = suppliers.Create(ctx, dto.SupplierRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	up, err := suppliers.Update(ctx, s.ID, dto.SupplierRequest{Name: "MedSupply Ltd", ContactPerson: "Joy"})
	require.NoError(t, err)
	assert.Equal(t, "Joy", up.ContactPerson)

	require.NoError(t, suppliers.Delete(ctx, s.ID))
	_, err = suppliers.GetByID(ctx, s.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
