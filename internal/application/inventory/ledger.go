package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pharmacy-api/internal/domain/inventory"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// Mensajes fijos del libro.
const (
	ReasonReceived     = "Stock received"
	ReasonDispensed    = "Dispensed to customer"
	ControlledWarning  = "This medicine requires a controlled-drug register entry."
	reconcileReasonFmt = "Manual audit reconciliation by %s"
)

// LedgerConfig parámetros del libro de inventario.
type LedgerConfig struct {
	ReceiptPrefix          string
	DefaultExpiryAlertDays int
}

// LedgerUseCase aplica los cambios de cantidad de los lotes. Cada operación ajusta la cantidad y
// agrega exactamente un movimiento por lote afectado dentro de una sola transacción;
// los lotes se leen con bloqueo de fila (SELECT FOR UPDATE) antes de escribir.
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	cfg       LedgerConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. movements se usa solo para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner TxRunner, movements repository.MovementRepository, cfg LedgerConfig, log *logger.Logger) *LedgerUseCase {
	if cfg.ReceiptPrefix == "" {
		cfg.ReceiptPrefix = "RCPT"
	}
	if cfg.DefaultExpiryAlertDays <= 0 {
		cfg.DefaultExpiryAlertDays = entity.DefaultExpiryAlertDays
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{txRunner: txRunner, movements: movements, cfg: cfg, log: log, now: time.Now}
}

// ── Receive ──────────────────────────────────────────────────────────────────

// ReceiveInput entrada de mercancía. Si (ProductID, BatchNumber) ya existe se incrementa ese lote.
type ReceiveInput struct {
	ProductID       string
	SupplierID      string
	BatchNumber     string
	ExpiryDate      time.Time
	Quantity        int
	BuyingPrice     decimal.Decimal
	UnitPrice       decimal.Decimal
	ExpiryAlertDays int
}

// ReceiveResult lote resultante y movimiento registrado.
type ReceiveResult struct {
	Batch    *entity.Batch
	Movement *entity.Movement
	Created  bool
}

// Receive registra una entrada de stock con un movimiento RECEIVE de delta positivo.
func (uc *LedgerUseCase) Receive(ctx context.Context, actor entity.Actor, in ReceiveInput) (*ReceiveResult, error) {
	in.BatchNumber = strings.TrimSpace(in.BatchNumber)
	if in.ProductID == "" || in.BatchNumber == "" {
		return nil, fmt.Errorf("product and batch number are required: %w", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}
	if in.BuyingPrice.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("prices cannot be negative: %w", domain.ErrInvalidInput)
	}

	now := uc.now()
	var res ReceiveResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %s: %w", in.ProductID, domain.ErrNotFound)
		}
		var supplierID *string
		if in.SupplierID != "" {
			supplier, err := r.Suppliers.GetByID(ctx, in.SupplierID)
			if err != nil {
				return err
			}
			if supplier == nil {
				return fmt.Errorf("supplier %s: %w", in.SupplierID, domain.ErrNotFound)
			}
			supplierID = &supplier.ID
		}

		batch, err := r.Batches.GetByProductAndNumberForUpdate(ctx, in.ProductID, in.BatchNumber)
		if err != nil {
			return err
		}
		if batch == nil {
			if in.ExpiryDate.IsZero() {
				return fmt.Errorf("expiry date is required for a new batch: %w", domain.ErrInvalidInput)
			}
			alertDays := in.ExpiryAlertDays
			if alertDays <= 0 {
				alertDays = uc.cfg.DefaultExpiryAlertDays
			}
			fresh := &entity.Batch{
				ID:              uuid.New().String(),
				ProductID:       in.ProductID,
				SupplierID:      supplierID,
				BatchNumber:     in.BatchNumber,
				ExpiryDate:      domaininv.DateOnly(in.ExpiryDate),
				Quantity:        in.Quantity,
				BuyingPrice:     in.BuyingPrice,
				UnitPrice:       in.UnitPrice,
				ExpiryAlertDays: alertDays,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			inserted, err := r.Batches.CreateIfAbsent(ctx, fresh)
			if err != nil {
				return err
			}
			if inserted {
				batch = fresh
				res.Created = true
			} else {
				// Otra entrada creó el lote entre la lectura y el insert: se incrementa ese.
				batch, err = r.Batches.GetByProductAndNumberForUpdate(ctx, in.ProductID, in.BatchNumber)
				if err != nil {
					return err
				}
				if batch == nil {
					return fmt.Errorf("batch %s vanished after insert conflict: %w", in.BatchNumber, domain.ErrStore)
				}
			}
		}
		// Lote existente: se suma la cantidad y se conservan vencimiento y precios registrados.
		if !res.Created {
			batch.Quantity += in.Quantity
			batch.UpdatedAt = now
			if err := r.Batches.UpdateQuantity(ctx, batch.ID, batch.Quantity); err != nil {
				return err
			}
		}

		mov := &entity.Movement{
			ID:        uuid.New().String(),
			BatchID:   batch.ID,
			Type:      entity.MovementReceive,
			Delta:     in.Quantity,
			Reason:    ReasonReceived,
			UserID:    actor.UserID,
			CreatedAt: now,
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return err
		}
		res.Batch = batch
		res.Movement = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("batch_id", res.Batch.ID).Int("delta", in.Quantity).Str("user", actor.Username).Msg("stock recibido")
	return &res, nil
}

// ── Sell ─────────────────────────────────────────────────────────────────────

// SellResult resultado de una dispensación unitaria. Warning no vacío si el producto es controlado.
type SellResult struct {
	Batch    *entity.Batch
	Movement *entity.Movement
	Warning  string
}

// Sell dispensa quantity unidades de un lote con un movimiento SALE de delta -quantity.
func (uc *LedgerUseCase) Sell(ctx context.Context, actor entity.Actor, batchID string, quantity int) (*SellResult, error) {
	if batchID == "" || quantity <= 0 {
		return nil, fmt.Errorf("batch and a positive quantity are required: %w", domain.ErrInvalidInput)
	}
	now := uc.now()
	var res SellResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		batch, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if err := checkDispensable(batch, batchID, quantity, now); err != nil {
			return err
		}
		batch.Quantity -= quantity
		batch.UpdatedAt = now
		if err := r.Batches.UpdateQuantity(ctx, batch.ID, batch.Quantity); err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			BatchID:   batch.ID,
			Type:      entity.MovementSale,
			Delta:     -quantity,
			Reason:    ReasonDispensed,
			UserID:    actor.UserID,
			CreatedAt: now,
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, batch.ProductID)
		if err != nil {
			return err
		}
		if product != nil && product.IsControlled {
			res.Warning = ControlledWarning
		}
		res.Batch = batch
		res.Movement = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("batch_id", batchID).Int("delta", -quantity).Str("user", actor.Username).Msg("stock dispensado")
	return &res, nil
}

// checkDispensable valida existencia, vencimiento y cantidad, en ese orden.
func checkDispensable(batch *entity.Batch, batchID string, quantity int, now time.Time) error {
	if batch == nil {
		return fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
	}
	if domaininv.IsExpired(batch, now) {
		return fmt.Errorf("cannot sell expired stock (batch %s expired %s): %w",
			batch.BatchNumber, batch.ExpiryDate.Format("2006-01-02"), domain.ErrInvalidState)
	}
	if quantity > batch.Quantity {
		return fmt.Errorf("batch %s: requested %d, available %d: %w",
			batch.BatchNumber, quantity, batch.Quantity, domain.ErrInsufficientStock)
	}
	return nil
}

// ── BulkSell ─────────────────────────────────────────────────────────────────

// SaleLine línea solicitada en una venta múltiple.
type SaleLine struct {
	BatchID  string
	Quantity int
}

// BulkSellInput venta de varias líneas bajo un solo recibo.
type BulkSellInput struct {
	ClientName   string
	Prescription entity.PrescriptionDetail
	Lines        []SaleLine
}

// BulkSellResult venta creada y advertencias de productos controlados.
type BulkSellResult struct {
	Transaction *entity.SalesTransaction
	Warnings    []string
}

// BulkSell valida todas las líneas antes de aplicar cualquier cambio y luego crea una venta,
// una línea y un movimiento SALE por línea, y la receta si trae datos clínicos.
// Si una línea falla no se persiste nada; el error identifica la primera línea inválida.
func (uc *LedgerUseCase) BulkSell(ctx context.Context, actor entity.Actor, in BulkSellInput) (*BulkSellResult, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("at least one line is required: %w", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if l.BatchID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: batch and a positive quantity are required: %w", i+1, domain.ErrInvalidInput)
		}
	}

	now := uc.now()
	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		clientName = entity.DefaultClientName
	}
	txn := &entity.SalesTransaction{
		ID:            uuid.New().String(),
		ReceiptNumber: uc.newReceiptNumber(now),
		ClientName:    clientName,
		UserID:        actor.UserID,
		Username:      actor.Username,
		CreatedAt:     now,
		TotalAmount:   decimal.Zero,
	}
	var warnings []string

	err := uc.txRunner.Run(ctx, func(r Repos) error {
		// Bloqueo en orden de ID para que ventas concurrentes no se crucen (deadlock).
		ids := make([]string, 0, len(in.Lines))
		seen := make(map[string]bool, len(in.Lines))
		for _, l := range in.Lines {
			if !seen[l.BatchID] {
				seen[l.BatchID] = true
				ids = append(ids, l.BatchID)
			}
		}
		sort.Strings(ids)
		batches := make(map[string]*entity.Batch, len(ids))
		for _, id := range ids {
			b, err := r.Batches.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			batches[id] = b
		}

		// Validación completa antes de mutar; cantidades acumuladas si un lote se repite.
		requested := make(map[string]int, len(ids))
		for i, l := range in.Lines {
			b := batches[l.BatchID]
			requested[l.BatchID] += l.Quantity
			if err := checkDispensable(b, l.BatchID, requested[l.BatchID], now); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
		}

		items := make([]entity.SaleItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			b := batches[l.BatchID]
			subtotal := b.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
			items = append(items, entity.SaleItem{
				ID:            uuid.New().String(),
				TransactionID: txn.ID,
				BatchID:       b.ID,
				BatchNumber:   b.BatchNumber,
				Quantity:      l.Quantity,
				UnitPrice:     b.UnitPrice,
				Subtotal:      subtotal,
			})
			txn.TotalAmount = txn.TotalAmount.Add(subtotal)
		}
		if err := r.Sales.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		controlled := make(map[string]bool)
		for i := range items {
			item := &items[i]
			b := batches[item.BatchID]
			b.Quantity -= item.Quantity
			b.UpdatedAt = now
			if err := r.Batches.UpdateQuantity(ctx, b.ID, b.Quantity); err != nil {
				return err
			}
			if err := r.Sales.CreateItem(ctx, item); err != nil {
				return err
			}
			txID := txn.ID
			mov := &entity.Movement{
				ID:            uuid.New().String(),
				BatchID:       b.ID,
				Type:          entity.MovementSale,
				Delta:         -item.Quantity,
				Reason:        ReasonDispensed,
				UserID:        actor.UserID,
				TransactionID: &txID,
				CreatedAt:     now,
			}
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
			product, err := r.Products.GetByID(ctx, b.ProductID)
			if err != nil {
				return err
			}
			if product != nil {
				item.BrandName = product.BrandName
				if product.IsControlled && !controlled[product.ID] {
					controlled[product.ID] = true
					warnings = append(warnings, fmt.Sprintf("%s: %s", product.BrandName, ControlledWarning))
				}
			}
		}
		txn.Items = items

		if in.Prescription.HasClinicalData() {
			p := in.Prescription
			p.ID = uuid.New().String()
			p.TransactionID = txn.ID
			if err := r.Sales.CreatePrescription(ctx, &p); err != nil {
				return err
			}
			txn.Prescription = &p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("receipt", txn.ReceiptNumber).
		Int("lines", len(txn.Items)).
		Str("total", txn.TotalAmount.StringFixed(2)).
		Str("user", actor.Username).
		Msg("venta registrada")
	return &BulkSellResult{Transaction: txn, Warnings: warnings}, nil
}

func (uc *LedgerUseCase) newReceiptNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", uc.cfg.ReceiptPrefix, now.Format("20060102"), suffix)
}

// ── Reconcile ────────────────────────────────────────────────────────────────

// ReconcileResult resultado de un ajuste por conteo físico. Changed=false implica que no se escribió nada.
type ReconcileResult struct {
	Changed  bool
	Delta    int
	Batch    *entity.Batch
	Movement *entity.Movement
}

// Reconcile iguala la cantidad del lote al conteo físico con un movimiento RECONCILE por la diferencia.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, actor entity.Actor, batchID string, physicalCount int) (*ReconcileResult, error) {
	if batchID == "" {
		return nil, fmt.Errorf("batch is required: %w", domain.ErrInvalidInput)
	}
	if physicalCount < 0 {
		return nil, fmt.Errorf("physical count cannot be negative: %w", domain.ErrInvalidInput)
	}
	now := uc.now()
	var res ReconcileResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		batch, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
		}
		res.Batch = batch
		delta := physicalCount - batch.Quantity
		if delta == 0 {
			return nil
		}
		batch.Quantity = physicalCount
		batch.UpdatedAt = now
		if err := r.Batches.UpdateQuantity(ctx, batch.ID, batch.Quantity); err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			BatchID:   batch.ID,
			Type:      entity.MovementReconcile,
			Delta:     delta,
			Reason:    fmt.Sprintf(reconcileReasonFmt, actor.Username),
			UserID:    actor.UserID,
			CreatedAt: now,
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return err
		}
		res.Changed = true
		res.Delta = delta
		res.Movement = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		uc.log.Info().Str("batch_id", batchID).Int("delta", res.Delta).Str("user", actor.Username).Msg("stock conciliado")
	}
	return &res, nil
}

// ── RebuildLedger ────────────────────────────────────────────────────────────

// LedgerQuery filtros del registro. ControlledOnly debería ser true para el registro DDA.
type LedgerQuery struct {
	ControlledOnly bool
	ProductID      string
	From           *time.Time
	To             *time.Time
}

// RebuildLedger reconstruye el registro con saldo acumulado por producto (proyección, no se persiste).
// El saldo arranca en cero al inicio del rango: con From posterior al primer movimiento de un
// producto el saldo no coincide con su existencia real.
func (uc *LedgerUseCase) RebuildLedger(ctx context.Context, q LedgerQuery) ([]domaininv.RegisterEntry, error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, fmt.Errorf("end date before start date: %w", domain.ErrInvalidInput)
	}
	movs, err := uc.movements.ListForLedger(ctx, repository.LedgerFilter{
		ControlledOnly: q.ControlledOnly,
		ProductID:      q.ProductID,
		DateRange:      repository.DateRange{From: q.From, To: q.To},
	})
	if err != nil {
		return nil, err
	}
	return domaininv.BuildRegister(movs), nil
}

// ListMovements auditoría de movimientos, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, batchNumber string, limit int) ([]*entity.MovementRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	return uc.movements.List(ctx, repository.MovementFilter{BatchNumber: strings.TrimSpace(batchNumber), Limit: limit})
}
