package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/inventory"
)

func ledgerMov(product string, typ entity.MovementType, delta int, at time.Time) *entity.LedgerMovement {
	return &entity.LedgerMovement{
		Movement:  entity.Movement{Type: typ, Delta: delta, CreatedAt: at},
		ProductID: product,
		BrandName: "brand-" + product,
	}
}

func TestBuildRegister_SaldoAcumuladoPorProducto(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	movs := []*entity.LedgerMovement{
		ledgerMov("a", entity.MovementReceive, 100, t0),
		ledgerMov("b", entity.MovementReceive, 10, t0.Add(time.Minute)),
		ledgerMov("a", entity.MovementSale, -30, t0.Add(2*time.Minute)),
		ledgerMov("a", entity.MovementReconcile, -5, t0.Add(3*time.Minute)),
		ledgerMov("b", entity.MovementSale, -4, t0.Add(4*time.Minute)),
	}

	rows := inventory.BuildRegister(movs)
	require.Len(t, rows, 5)

	assert.Equal(t, 100, rows[0].Balance)
	assert.Equal(t, 10, rows[1].Balance)
	assert.Equal(t, 70, rows[2].Balance)
	assert.Equal(t, 65, rows[3].Balance)
	assert.Equal(t, 6, rows[4].Balance)

	assert.Equal(t, inventory.EntryIn, rows[0].EntryType)
	assert.Equal(t, 100, rows[0].QuantityIn)
	assert.Equal(t, inventory.EntryOut, rows[2].EntryType)
	assert.Equal(t, 30, rows[2].QuantityOut)
	assert.Equal(t, 0, rows[2].QuantityIn)
}

func TestBuildRegister_OrdenaCronologicamente(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	movs := []*entity.LedgerMovement{
		ledgerMov("a", entity.MovementSale, -20, t0.Add(time.Hour)),
		ledgerMov("a", entity.MovementReceive, 50, t0),
	}
	rows := inventory.BuildRegister(movs)
	require.Len(t, rows, 2)
	assert.Equal(t, 50, rows[0].Balance)
	assert.Equal(t, 30, rows[1].Balance)
}

// El saldo parte de cero en el primer movimiento del rango consultado.
func TestBuildRegister_SaldoRelativoAlRango(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := inventory.BuildRegister([]*entity.LedgerMovement{
		ledgerMov("a", entity.MovementSale, -10, t0),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, -10, rows[0].Balance)
}

func TestBuildRegister_EntidadYReferencia(t *testing.T) {
	t0 := time.Now()
	sale := ledgerMov("a", entity.MovementSale, -1, t0)
	sale.ReceiptNumber = "RCPT-20240301-ABCD1234"
	walkIn := ledgerMov("a", entity.MovementSale, -1, t0.Add(time.Second))
	walkIn.ClientName = ""
	sale.ClientName = "Jane"
	recv := ledgerMov("a", entity.MovementReceive, 5, t0.Add(2*time.Second))
	recv.SupplierName = "Acme Pharma"

	rows := inventory.BuildRegister([]*entity.LedgerMovement{sale, walkIn, recv})
	require.Len(t, rows, 3)
	assert.Equal(t, "Jane", rows[0].Entity)
	assert.Equal(t, "RCPT-20240301-ABCD1234", rows[0].Reference)
	assert.Equal(t, entity.DefaultClientName, rows[1].Entity)
	assert.Equal(t, "Acme Pharma", rows[2].Entity)
}

func TestBuildRegister_Vacio(t *testing.T) {
	assert.Empty(t, inventory.BuildRegister(nil))
}
