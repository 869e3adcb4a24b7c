package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

var pharmacist = entity.Actor{UserID: "u-1", Username: "ann", Role: entity.RoleStaff}

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{ID: pharmacist.UserID, Username: pharmacist.Username, Role: pharmacist.Role, Active: true}))
	return &fixture{
		store:  store,
		ledger: inventory.NewLedgerUseCase(store, store.Movements(), inventory.LedgerConfig{ReceiptPrefix: "TEST"}, logger.Nop()),
	}
}

func (f *fixture) product(t *testing.T, brand string, controlled bool) string {
	t.Helper()
	p := &entity.Product{ID: "p-" + brand, BrandName: brand, IsControlled: controlled, ReorderLevel: 5}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p.ID
}

func (f *fixture) receive(t *testing.T, productID, batch string, qty int, price int64) *entity.Batch {
	t.Helper()
	res, err := f.ledger.Receive(context.Background(), pharmacist, inventory.ReceiveInput{
		ProductID: productID, BatchNumber: batch, ExpiryDate: time.Now().AddDate(1, 0, 0), Quantity: qty,
		BuyingPrice: decimal.NewFromInt(price / 2), UnitPrice: decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return res.Batch
}

func (f *fixture) quantity(t *testing.T, batchID string) int {
	t.Helper()
	b, err := f.store.Batches().GetByID(context.Background(), batchID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.Quantity
}

func (f *fixture) movements(t *testing.T, batchID string) []*entity.Movement {
	t.Helper()
	movs, err := f.store.Movements().ListByBatch(context.Background(), batchID)
	require.NoError(t, err)
	return movs
}

func TestLedger_SecuenciaCompletaSumaDeltas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Panadol", false), "P-100", 100, 10)

	_, err := f.ledger.Sell(ctx, pharmacist, b.ID, 30)
	require.NoError(t, err)
	rec, err := f.ledger.Reconcile(ctx, pharmacist, b.ID, 65)
	require.NoError(t, err)
	assert.True(t, rec.Changed)
	assert.Equal(t, -5, rec.Delta)
	assert.Equal(t, "Manual audit reconciliation by ann", rec.Movement.Reason)
	again, err := f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{ProductID: b.ProductID, BatchNumber: "P-100", Quantity: 50})
	require.NoError(t, err)
	assert.False(t, again.Created)

	assert.Equal(t, 115, f.quantity(t, b.ID))
	movs := f.movements(t, b.ID)
	require.Len(t, movs, 4)
	sum := 0
	for _, m := range movs {
		sum += m.Delta
	}
	assert.Equal(t, 115, sum)
	assert.Equal(t, []entity.MovementType{entity.MovementReceive, entity.MovementSale, entity.MovementReconcile, entity.MovementReceive},
		[]entity.MovementType{movs[0].Type, movs[1].Type, movs[2].Type, movs[3].Type})
}

func TestReceive_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Brufen", false)

	_, err := f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{ProductID: pid, BatchNumber: "B1", Quantity: 0, ExpiryDate: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{ProductID: "nope", BatchNumber: "B1", Quantity: 1, ExpiryDate: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{ProductID: pid, BatchNumber: "B1", Quantity: 1, SupplierID: "ghost", ExpiryDate: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{ProductID: pid, BatchNumber: "B1", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "lote nuevo sin vencimiento")
}

func TestReceive_LoteExistenteConOtroVencimientoSumaCantidad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Panadol", false), "P-1", 10, 10)

	res, err := f.ledger.Receive(ctx, pharmacist, inventory.ReceiveInput{
		ProductID: b.ProductID, BatchNumber: "P-1", Quantity: 5,
		ExpiryDate: time.Now().AddDate(2, 0, 0), UnitPrice: decimal.NewFromInt(99),
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 15, res.Batch.Quantity)

	stored, err := f.store.Batches().GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 15, stored.Quantity)
	assert.True(t, b.ExpiryDate.Equal(stored.ExpiryDate), "se conserva el vencimiento registrado")
	assert.True(t, b.UnitPrice.Equal(stored.UnitPrice), "se conserva el precio registrado")
	assert.Len(t, f.movements(t, b.ID), 2)
}

// racingBatches simula que otra entrada crea el lote entre la lectura y el insert.
type racingBatches struct {
	repository.BatchRepository
	missed *bool
}

func (r racingBatches) GetByProductAndNumberForUpdate(ctx context.Context, productID, number string) (*entity.Batch, error) {
	if !*r.missed {
		*r.missed = true
		return nil, nil
	}
	return r.BatchRepository.GetByProductAndNumberForUpdate(ctx, productID, number)
}

type racingRunner struct{ store *memory.Store }

func (r racingRunner) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	return r.store.Run(ctx, func(repos inventory.Repos) error {
		missed := false
		repos.Batches = racingBatches{BatchRepository: repos.Batches, missed: &missed}
		return fn(repos)
	})
}

func TestReceive_PrimeraEntradaConcurrenteIncrementaEnVezDeConflicto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Panadol", false), "P-1", 10, 10)
	racing := inventory.NewLedgerUseCase(racingRunner{f.store}, f.store.Movements(), inventory.LedgerConfig{}, nil)

	res, err := racing.Receive(ctx, pharmacist, inventory.ReceiveInput{
		ProductID: b.ProductID, BatchNumber: "P-1", Quantity: 4, ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, b.ID, res.Batch.ID)
	assert.Equal(t, 14, f.quantity(t, b.ID))
	movs := f.movements(t, b.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, 4, movs[1].Delta)
}

func TestSell_StockInsuficienteNoModifica(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Amoxil", false), "A-1", 10, 20)

	_, err := f.ledger.Sell(context.Background(), pharmacist, b.ID, 11)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 10, f.quantity(t, b.ID))
	assert.Len(t, f.movements(t, b.ID), 1)
}

func TestSell_LoteVencido(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid := f.product(t, "Flagyl", false)
	require.NoError(t, f.store.Batches().Create(ctx, &entity.Batch{
		ID: "b-old", ProductID: pid, BatchNumber: "OLD", Quantity: 10,
		ExpiryDate: domaininv.DateOnly(time.Now()).AddDate(0, 0, -1),
	}))

	_, err := f.ledger.Sell(ctx, pharmacist, "b-old", 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, 10, f.quantity(t, "b-old"))
	assert.Empty(t, f.movements(t, "b-old"))
}

func TestSell_LoteInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Sell(context.Background(), pharmacist, "missing", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSell_ControladoDevuelveAdvertencia(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Morphine", true), "M-1", 10, 100)

	res, err := f.ledger.Sell(context.Background(), pharmacist, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, inventory.ControlledWarning, res.Warning)
	assert.Equal(t, 8, res.Batch.Quantity)
	assert.Equal(t, -2, res.Movement.Delta)
	assert.Equal(t, inventory.ReasonDispensed, res.Movement.Reason)
}

func TestReconcile_SinCambioNoEscribe(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Zinnat", false), "Z-1", 40, 10)

	res, err := f.ledger.Reconcile(context.Background(), pharmacist, b.ID, 40)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Movement)
	assert.Len(t, f.movements(t, b.ID), 1)

	_, err = f.ledger.Reconcile(context.Background(), pharmacist, b.ID, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBulkSell_CreaVentaLineasYMovimientos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.receive(t, f.product(t, "Panadol", false), "P-1", 20, 10)
	m := f.receive(t, f.product(t, "Morphine", true), "M-1", 5, 100)

	res, err := f.ledger.BulkSell(ctx, pharmacist, inventory.BulkSellInput{
		Prescription: entity.PrescriptionDetail{PrescriberName: "Dr. Otieno"},
		Lines:        []inventory.SaleLine{{BatchID: a.ID, Quantity: 3}, {BatchID: m.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	txn := res.Transaction
	assert.Equal(t, entity.DefaultClientName, txn.ClientName)
	assert.Regexp(t, `^TEST-\d{8}-[0-9A-F]{8}$`, txn.ReceiptNumber)
	assert.True(t, decimal.NewFromInt(130).Equal(txn.TotalAmount))
	require.Len(t, txn.Items, 2)
	require.NotNil(t, txn.Prescription)
	assert.Len(t, res.Warnings, 1)

	stored, err := f.store.Sales().GetByID(ctx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, 17, f.quantity(t, a.ID))
	assert.Equal(t, 4, f.quantity(t, m.ID))
	movs := f.movements(t, a.ID)
	require.Len(t, movs, 2)
	require.NotNil(t, movs[1].TransactionID)
	assert.Equal(t, txn.ID, *movs[1].TransactionID)
}

func TestBulkSell_LineaInvalidaNoPersisteNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.receive(t, f.product(t, "Panadol", false), "P-1", 20, 10)
	b := f.receive(t, f.product(t, "Amoxil", false), "A-1", 2, 10)

	_, err := f.ledger.BulkSell(ctx, pharmacist, inventory.BulkSellInput{
		Lines: []inventory.SaleLine{{BatchID: a.ID, Quantity: 5}, {BatchID: b.ID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "line 2")

	assert.Equal(t, 20, f.quantity(t, a.ID))
	assert.Equal(t, 2, f.quantity(t, b.ID))
	assert.Len(t, f.movements(t, a.ID), 1)
	assert.Len(t, f.movements(t, b.ID), 1)
	sales, err := f.store.Sales().List(ctx, repository.SalesFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestBulkSell_LoteRepetidoSeAcumula(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, f.product(t, "Panadol", false), "P-1", 5, 10)

	_, err := f.ledger.BulkSell(context.Background(), pharmacist, inventory.BulkSellInput{
		Lines: []inventory.SaleLine{{BatchID: a.ID, Quantity: 3}, {BatchID: a.ID, Quantity: 3}},
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 5, f.quantity(t, a.ID))
}

// failingMovements falla al insertar movimientos para probar el rollback.
type failingMovements struct{ repository.MovementRepository }

func (failingMovements) Create(context.Context, *entity.Movement) error {
	return fmt.Errorf("insert movement: %w", domain.ErrStore)
}

type failingRunner struct{ store *memory.Store }

func (r failingRunner) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	return r.store.Run(ctx, func(repos inventory.Repos) error {
		repos.Movements = failingMovements{repos.Movements}
		return fn(repos)
	})
}

func TestSell_FallaDelMovimientoDeshaceCantidad(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Panadol", false), "P-1", 10, 10)
	broken := inventory.NewLedgerUseCase(failingRunner{f.store}, f.store.Movements(), inventory.LedgerConfig{}, nil)

	_, err := broken.Sell(context.Background(), pharmacist, b.ID, 4)
	assert.True(t, errors.Is(err, domain.ErrStore))
	assert.Equal(t, 10, f.quantity(t, b.ID))
	assert.Len(t, f.movements(t, b.ID), 1)
}

// flakyMovements falla en la n-ésima inserción de movimiento.
type flakyMovements struct {
	repository.MovementRepository
	calls  *int
	failAt int
}

func (m flakyMovements) Create(ctx context.Context, mov *entity.Movement) error {
	*m.calls++
	if *m.calls == m.failAt {
		return fmt.Errorf("insert movement: %w", domain.ErrStore)
	}
	return m.MovementRepository.Create(ctx, mov)
}

type flakyRunner struct {
	store  *memory.Store
	failAt int
}

func (r flakyRunner) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	return r.store.Run(ctx, func(repos inventory.Repos) error {
		calls := 0
		repos.Movements = flakyMovements{MovementRepository: repos.Movements, calls: &calls, failAt: r.failAt}
		return fn(repos)
	})
}

func TestBulkSell_FallaEnSegundaLineaDeshaceTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.receive(t, f.product(t, "Panadol", false), "P-1", 20, 10)
	m := f.receive(t, f.product(t, "Morphine", true), "M-1", 5, 100)
	broken := inventory.NewLedgerUseCase(flakyRunner{store: f.store, failAt: 2}, f.store.Movements(), inventory.LedgerConfig{}, nil)

	_, err := broken.BulkSell(ctx, pharmacist, inventory.BulkSellInput{
		Prescription: entity.PrescriptionDetail{PrescriberName: "Dr. Otieno"},
		Lines:        []inventory.SaleLine{{BatchID: a.ID, Quantity: 3}, {BatchID: m.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))

	// La primera línea ya había escrito cantidad, línea de venta y movimiento: todo se deshace.
	assert.Equal(t, 20, f.quantity(t, a.ID))
	assert.Equal(t, 5, f.quantity(t, m.ID))
	assert.Len(t, f.movements(t, a.ID), 1)
	assert.Len(t, f.movements(t, m.ID), 1)
	sales, err := f.store.Sales().List(ctx, repository.SalesFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	lines, err := f.store.Analytics().ReportLines(ctx, repository.SalesFilter{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSell_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t)
	b := f.receive(t, f.product(t, "Panadol", false), "P-1", 10, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.Sell(context.Background(), pharmacist, b.ID, 3); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, f.quantity(t, b.ID))
}

func TestRebuildLedger_SoloControladosConSaldo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.receive(t, f.product(t, "Morphine", true), "M-1", 10, 100)
	f.receive(t, f.product(t, "Panadol", false), "P-1", 10, 10)
	_, err := f.ledger.BulkSell(ctx, pharmacist, inventory.BulkSellInput{ClientName: "Joy", Lines: []inventory.SaleLine{{BatchID: m.ID, Quantity: 4}}})
	require.NoError(t, err)

	entries, err := f.ledger.RebuildLedger(ctx, inventory.LedgerQuery{ControlledOnly: true})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domaininv.EntryIn, entries[0].EntryType)
	assert.Equal(t, 10, entries[0].Balance)
	assert.Equal(t, domaininv.EntryOut, entries[1].EntryType)
	assert.Equal(t, 4, entries[1].QuantityOut)
	assert.Equal(t, 6, entries[1].Balance)
	assert.Equal(t, "Joy", entries[1].Entity)

	from := time.Now().AddDate(0, 0, 1)
	to := time.Now()
	_, err = f.ledger.RebuildLedger(ctx, inventory.LedgerQuery{From: &from, To: &to})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
