package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/analytics"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

var (
	ann = entity.Actor{UserID: "u-ann", Username: "ann", Role: entity.RoleStaff}
	bob = entity.Actor{UserID: "u-bob", Username: "bob", Role: entity.RoleAdmin}
)

// seedSales dos marcas: Panadol (compra 10, venta 15) y Amoxil (compra 20, venta 50).
func seedSales(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, a := range []entity.Actor{ann, bob} {
		require.NoError(t, store.Users().Create(ctx, &entity.User{ID: a.UserID, Username: a.Username, Role: a.Role, Active: true}))
	}
	ledger := inventory.NewLedgerUseCase(store, store.Movements(), inventory.LedgerConfig{}, logger.Nop())
	expiry := time.Now().AddDate(1, 0, 0)

	batchOf := func(brand string, buying, selling int64) string {
		p := &entity.Product{ID: "p-" + brand, BrandName: brand, ReorderLevel: 1}
		require.NoError(t, store.Products().Create(ctx, p))
		res, err := ledger.Receive(ctx, bob, inventory.ReceiveInput{
			ProductID: p.ID, BatchNumber: brand + "-1", ExpiryDate: expiry, Quantity: 100,
			BuyingPrice: decimal.NewFromInt(buying), UnitPrice: decimal.NewFromInt(selling),
		})
		require.NoError(t, err)
		return res.Batch.ID
	}
	panadol := batchOf("Panadol", 10, 15)
	amoxil := batchOf("Amoxil", 20, 50)

	_, err := ledger.BulkSell(ctx, ann, inventory.BulkSellInput{Lines: []inventory.SaleLine{{BatchID: panadol, Quantity: 4}}})
	require.NoError(t, err)
	_, err = ledger.BulkSell(ctx, bob, inventory.BulkSellInput{
		ClientName: "Joy",
		Lines:      []inventory.SaleLine{{BatchID: amoxil, Quantity: 2}, {BatchID: panadol, Quantity: 2}},
	})
	require.NoError(t, err)
	return store
}

func TestAdminOverview_IngresosUtilidadYTopMarcas(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())

	out, err := uc.AdminOverview(context.Background(), analytics.Period{}, "")
	require.NoError(t, err)

	// ingresos: 4*15 + (2*50 + 2*15) = 190; utilidad: 6*5 + 2*30 = 90
	assert.True(t, decimal.NewFromInt(190).Equal(out.TotalRevenue), out.TotalRevenue.String())
	assert.True(t, decimal.NewFromInt(90).Equal(out.TotalProfit), out.TotalProfit.String())
	assert.Equal(t, 2, out.TransactionCount)
	require.Len(t, out.ChartData, 1)
	require.Len(t, out.PieData, 2)
	assert.Equal(t, "Amoxil", out.PieData[0].Name)
	assert.True(t, decimal.NewFromInt(60).Equal(out.PieData[0].Value))
}

func TestAdminOverview_FiltraPorUsuario(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())

	out, err := uc.AdminOverview(context.Background(), analytics.Period{}, ann.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TransactionCount)
	assert.True(t, decimal.NewFromInt(60).Equal(out.TotalRevenue))
	assert.True(t, decimal.NewFromInt(20).Equal(out.TotalProfit))
}

func TestMySales_SoloVentasPropias(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())

	out, err := uc.MySales(context.Background(), bob, analytics.Period{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TransactionCount)
	assert.True(t, decimal.NewFromInt(130).Equal(out.TotalRevenue))
	require.Len(t, out.Records, 1)
	assert.Equal(t, "Joy", out.Records[0].ClientName)
	assert.Equal(t, 2, out.Records[0].ItemCount)
}

func TestMySales_RangoFueraDeVentas(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())
	from := time.Now().AddDate(0, 0, 5)

	out, err := uc.MySales(context.Background(), ann, analytics.Period{From: &from})
	require.NoError(t, err)
	assert.Zero(t, out.TransactionCount)
	assert.Empty(t, out.Records)
	assert.True(t, out.TotalRevenue.IsZero())
}

func TestReportLines_RangoInvertido(t *testing.T) {
	uc := analytics.NewSalesUseCase(memory.NewStore().Analytics(), memory.NewStore().Sales())
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := uc.ReportLines(context.Background(), analytics.Period{From: &from, To: &to}, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestReportLines_UtilidadPorVenta(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())

	lines, err := uc.ReportLines(context.Background(), analytics.Period{}, "")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Profit)
	}
	assert.True(t, decimal.NewFromInt(90).Equal(total))
}

func TestReportLines_MasRecientesPrimero(t *testing.T) {
	store := seedSales(t)
	uc := analytics.NewSalesUseCase(store.Analytics(), store.Sales())

	lines, err := uc.ReportLines(context.Background(), analytics.Period{}, "")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	// La venta de bob a Joy se registró después de la de ann.
	assert.Equal(t, "Joy", lines[0].ClientName)
	assert.Equal(t, "bob", lines[0].Username)
	assert.Equal(t, "ann", lines[1].Username)
	assert.False(t, lines[0].Date.Before(lines[1].Date))
}
