package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
)

func seedBatch(t *testing.T, f *fixture, id, productID, number string, qty int, expiresIn int) {
	t.Helper()
	require.NoError(t, f.store.Batches().Create(context.Background(), &entity.Batch{
		ID: id, ProductID: productID, BatchNumber: number, Quantity: qty,
		ExpiryDate:      domaininv.DateOnly(time.Now()).AddDate(0, 0, expiresIn),
		ExpiryAlertDays: 30,
	}))
}

func TestAlerts_ClasificaYExcluyePlaceholders(t *testing.T) {
	f := newFixture(t)
	panadol := f.product(t, "Panadol", false) // reorder 5
	morphine := f.product(t, "Morphine", true)

	seedBatch(t, f, "near", panadol, "P-NEAR", 50, 10)
	seedBatch(t, f, "low", panadol, "P-LOW", 3, 400)
	seedBatch(t, f, "ctrl", morphine, "M-1", 20, 400)
	seedBatch(t, f, "ph", panadol, "PLACEHOLDER-1", 0, 5)

	uc := inventory.NewStockUseCase(f.store.Batches(), 60)
	report, err := uc.Alerts(context.Background())
	require.NoError(t, err)

	require.Len(t, report.NearExpiry, 1)
	assert.Equal(t, "near", report.NearExpiry[0].ID)
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "low", report.LowStock[0].ID)
	require.Len(t, report.ControlledAttention, 1)
	assert.Equal(t, "Morphine", report.ControlledAttention[0].BrandName)
	assert.Contains(t, report.Note, "System scan complete")
}

func TestChecklist_EtiquetasConVentana(t *testing.T) {
	f := newFixture(t)
	panadol := f.product(t, "Panadol", false)
	amoxil := f.product(t, "Amoxil", false)

	seedBatch(t, f, "a", amoxil, "A-1", 2, 20)    // bajo y por vencer
	seedBatch(t, f, "b", panadol, "P-1", 100, 20) // por vencer
	seedBatch(t, f, "c", panadol, "P-2", 100, 300)
	seedBatch(t, f, "d", panadol, "P-3", 0, 300) // sin existencias: fuera

	uc := inventory.NewStockUseCase(f.store.Batches(), 60)
	items, err := uc.Checklist(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	labels := map[string]string{}
	for _, it := range items {
		labels[it.Batch.ID] = it.AlertType
	}
	assert.Equal(t, domaininv.ChecklistLowAndExpiring, labels["a"])
	assert.Equal(t, domaininv.ChecklistExpiry, labels["b"])
	assert.Equal(t, domaininv.ChecklistHealthy, labels["c"])
	assert.Equal(t, "Amoxil", items[0].Batch.BrandName)
}
