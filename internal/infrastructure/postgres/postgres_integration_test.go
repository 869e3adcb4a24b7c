//go:build integration

package postgres_test

// Pruebas contra PostgreSQL real con testcontainers.
// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/... -v

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pharmacy-api/pkg/config"
)

type testEnv struct {
	pool   *pgxpool.Pool
	ledger *inventory.LedgerUseCase
	actor  entity.Actor
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pharmacy_test"),
		tcPostgres.WithUsername("pharmacy"),
		tcPostgres.WithPassword("pharmacy"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: pgURL, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	// Segunda ejecución: el esquema es idempotente.
	require.NoError(t, postgres.Migrate(ctx, pool))

	now := time.Now()
	user := &entity.User{
		ID: uuid.New().String(), Username: "pharmacist", Role: entity.RoleStaff,
		PasswordHash: "x", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, user))

	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), postgres.NewMovementRepository(pool),
		inventory.LedgerConfig{ReceiptPrefix: "RCPT"}, nil)
	return &testEnv{
		pool:   pool,
		ledger: ledger,
		actor:  entity.Actor{UserID: user.ID, Username: user.Username, Role: user.Role},
	}
}

func (e *testEnv) product(t *testing.T, brand string, controlled bool) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{ID: uuid.New().String(), BrandName: brand, IsControlled: controlled,
		ReorderLevel: 5, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewProductRepository(e.pool).Create(context.Background(), p))
	return p
}

func (e *testEnv) receive(t *testing.T, productID, batchNumber string, qty int) *entity.Batch {
	t.Helper()
	res, err := e.ledger.Receive(context.Background(), e.actor, inventory.ReceiveInput{
		ProductID:   productID,
		BatchNumber: batchNumber,
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    qty,
		BuyingPrice: decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(80),
	})
	require.NoError(t, err)
	return res.Batch
}

func TestLedgerPostgres_FlujoCompleto(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Morphine 10mg", true)

	b := env.receive(t, p.ID, "MX-01", 100)
	_, err := env.ledger.Sell(ctx, env.actor, b.ID, 30)
	require.NoError(t, err)
	_, err = env.ledger.Reconcile(ctx, env.actor, b.ID, 65)
	require.NoError(t, err)
	env.receive(t, p.ID, "MX-01", 50)

	got, err := postgres.NewBatchRepository(env.pool).GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 115, got.Quantity)

	movs, err := postgres.NewMovementRepository(env.pool).ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	sum := 0
	for _, m := range movs {
		sum += m.Delta
	}
	assert.Len(t, movs, 4)
	assert.Equal(t, got.Quantity, sum)

	reg, err := env.ledger.RebuildLedger(ctx, inventory.LedgerQuery{ControlledOnly: true})
	require.NoError(t, err)
	require.Len(t, reg, 4)
	assert.Equal(t, 115, reg[3].Balance)
}

func TestLedgerPostgres_BulkSellAtomico(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Amoxil 500", false)
	a := env.receive(t, p.ID, "A-1", 10)
	b := env.receive(t, p.ID, "B-1", 2)

	_, err := env.ledger.BulkSell(ctx, env.actor, inventory.BulkSellInput{Lines: []inventory.SaleLine{
		{BatchID: a.ID, Quantity: 3},
		{BatchID: b.ID, Quantity: 5},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	batches := postgres.NewBatchRepository(env.pool)
	gotA, _ := batches.GetByID(ctx, a.ID)
	assert.Equal(t, 10, gotA.Quantity)

	var count int
	require.NoError(t, env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_transactions`).Scan(&count))
	assert.Zero(t, count)

	res, err := env.ledger.BulkSell(ctx, env.actor, inventory.BulkSellInput{
		ClientName:   "Jane",
		Prescription: entity.PrescriptionDetail{PrescriberName: "Dr. Otieno"},
		Lines:        []inventory.SaleLine{{BatchID: a.ID, Quantity: 3}, {BatchID: b.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	tx, err := postgres.NewSaleRepository(env.pool).GetByID(ctx, res.Transaction.ID)
	require.NoError(t, err)
	require.NotNil(t, tx.Prescription)
	assert.Len(t, tx.Items, 2)
	assert.True(t, decimal.NewFromInt(400).Equal(tx.TotalAmount))

	summary, err := postgres.NewAnalyticsRepository(env.pool).Summary(ctx, repository.SalesFilter{UserID: env.actor.UserID})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TransactionCount)
	assert.True(t, decimal.NewFromInt(150).Equal(summary.Profit))
}

func TestLedgerPostgres_VentasConcurrentesNoSobrevenden(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Panadol", false)
	b := env.receive(t, p.ID, "P-1", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.ledger.Sell(ctx, env.actor, b.ID, 3); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	got, err := postgres.NewBatchRepository(env.pool).GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestCatalogPostgres_ConflictosYBorrado(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Ventolin", false)

	dup := &entity.Product{ID: uuid.New().String(), BrandName: "Ventolin", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	err := postgres.NewProductRepository(env.pool).Create(ctx, dup)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	env.receive(t, p.ID, "V-1", 1)
	err = postgres.NewProductRepository(env.pool).Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLedgerPostgres_LineasDeUnaVentaConservanOrden(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Pethidine 50mg", true)
	b := env.receive(t, p.ID, "PT-01", 20)

	// Todas las líneas comparten created_at; el orden debe ser el de inserción.
	_, err := env.ledger.BulkSell(ctx, env.actor, inventory.BulkSellInput{
		ClientName: "Ward 4",
		Lines: []inventory.SaleLine{
			{BatchID: b.ID, Quantity: 2}, {BatchID: b.ID, Quantity: 5},
			{BatchID: b.ID, Quantity: 1}, {BatchID: b.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	entries, err := env.ledger.RebuildLedger(ctx, inventory.LedgerQuery{ControlledOnly: true})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	outs := make([]int, 0, 4)
	balances := make([]int, 0, 5)
	for _, e := range entries {
		balances = append(balances, e.Balance)
		if e.QuantityOut > 0 {
			outs = append(outs, e.QuantityOut)
		}
	}
	assert.Equal(t, []int{2, 5, 1, 4}, outs)
	assert.Equal(t, []int{20, 18, 13, 12, 8}, balances)
}

func TestLedgerPostgres_PrimerasEntradasConcurrentesDelMismoLote(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Ventolin", false)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.ledger.Receive(ctx, env.actor, inventory.ReceiveInput{
				ProductID: p.ID, BatchNumber: "VT-01", ExpiryDate: time.Now().AddDate(1, 0, 0), Quantity: 3,
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	b, err := postgres.NewBatchRepository(env.pool).GetByProductAndNumberForUpdate(ctx, p.ID, "VT-01")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 18, b.Quantity)
	movs, err := postgres.NewMovementRepository(env.pool).ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 6)
}
