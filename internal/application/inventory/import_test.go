package inventory_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// stubSheet devuelve filas fijas sin leer el archivo.
type stubSheet struct {
	rows     []inventory.ImportRow
	failures []inventory.ImportFailure
	err      error
}

func (s stubSheet) ReadRows(io.Reader, string) ([]inventory.ImportRow, []inventory.ImportFailure, error) {
	return s.rows, s.failures, s.err
}

func TestImportFile_RecibeFilasYReportaFallos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "Panadol", false)
	require.NoError(t, f.store.Suppliers().Create(ctx, &entity.Supplier{ID: "s1", Name: "MedSupply"}))

	expiry := time.Now().AddDate(1, 0, 0)
	sheet := stubSheet{
		rows: []inventory.ImportRow{
			{Line: 2, BrandName: "Panadol", BatchNumber: "P-1", ExpiryDate: expiry, Quantity: 10, UnitPrice: decimal.NewFromInt(5), SupplierName: "MedSupply"},
			{Line: 4, BrandName: "Unknown", BatchNumber: "U-1", ExpiryDate: expiry, Quantity: 1},
			{Line: 5, BrandName: "Panadol", BatchNumber: "P-1", Quantity: 5},
		},
		failures: []inventory.ImportFailure{{Line: 3, Reason: "quantity: not a number"}},
	}
	uc := inventory.NewImportUseCase(f.ledger, f.store.Products(), f.store.Suppliers(), sheet)

	summary, err := uc.ImportFile(ctx, pharmacist, strings.NewReader(""), "stock.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Received)
	require.Len(t, summary.Failed, 2)
	assert.Equal(t, 3, summary.Failed[0].Line)
	assert.Equal(t, 4, summary.Failed[1].Line)

	batches, err := f.store.Batches().ListDetails(ctx, repository.BatchFilter{Search: "P-1"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 15, batches[0].Quantity)
	assert.Equal(t, "MedSupply", batches[0].SupplierName)
}

func TestImportFile_ArchivoIlegible(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewImportUseCase(f.ledger, f.store.Products(), f.store.Suppliers(), stubSheet{err: errors.New("unsupported file type")})

	_, err := uc.ImportFile(context.Background(), pharmacist, strings.NewReader(""), "stock.pdf")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
