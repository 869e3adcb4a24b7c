package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo persistencia de lotes. Los métodos *ForUpdate usan SELECT ... FOR UPDATE
// y deben llamarse dentro de una transacción (TxRunner).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `b.id, b.product_id, b.supplier_id, b.batch_number, b.expiry_date, b.quantity,
	b.buying_price, b.unit_price, b.expiry_alert_days, b.created_at, b.updated_at`

func scanBatch(row pgxScanner) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.ProductID, &b.SupplierID, &b.BatchNumber, &b.ExpiryDate, &b.Quantity,
		&b.BuyingPrice, &b.UnitPrice, &b.ExpiryAlertDays, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (id, product_id, supplier_id, batch_number, expiry_date, quantity,
			buying_price, unit_price, expiry_alert_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, b.ID, b.ProductID, b.SupplierID, b.BatchNumber, b.ExpiryDate, b.Quantity,
		b.BuyingPrice, b.UnitPrice, b.ExpiryAlertDays, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("batch %q", b.BatchNumber))
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("product %s: %w", b.ProductID, domain.ErrNotFound)
		}
		return storeErr("insert batch", err)
	}
	return nil
}

// CreateIfAbsent inserta con ON CONFLICT DO NOTHING. Si otra transacción está insertando el
// mismo lote, espera a que termine y devuelve false.
func (r *BatchRepo) CreateIfAbsent(ctx context.Context, b *entity.Batch) (bool, error) {
	query := `
		INSERT INTO batches (id, product_id, supplier_id, batch_number, expiry_date, quantity,
			buying_price, unit_price, expiry_alert_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id, batch_number) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, b.ID, b.ProductID, b.SupplierID, b.BatchNumber, b.ExpiryDate, b.Quantity,
		b.BuyingPrice, b.UnitPrice, b.ExpiryAlertDays, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("product %s: %w", b.ProductID, domain.ErrNotFound)
		}
		return false, storeErr("insert batch", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BatchRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches b WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr(op, err)
	}
	return b, nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, "get batch", `b.id = $1`, id)
}

// GetForUpdate bloquea la fila del lote hasta el fin de la transacción.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, "lock batch", `b.id = $1 FOR UPDATE`, id)
}

func (r *BatchRepo) GetByProductAndNumberForUpdate(ctx context.Context, productID, batchNumber string) (*entity.Batch, error) {
	return r.getOne(ctx, "lock batch by number", `b.product_id = $1 AND b.batch_number = $2 FOR UPDATE`, productID, batchNumber)
}

// UpdateQuantity fija la cantidad; el CHECK (quantity >= 0) rechaza valores negativos.
func (r *BatchRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE batches SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return storeErr("update batch quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("batch %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

const batchDetailSelect = `
	SELECT ` + batchColumns + `, p.brand_name, COALESCE(g.name, ''), COALESCE(s.name, ''), p.is_controlled, p.reorder_level
	FROM batches b
	JOIN products p ON p.id = b.product_id
	LEFT JOIN generic_drugs g ON g.id = p.generic_id
	LEFT JOIN suppliers s ON s.id = b.supplier_id`

func scanBatchDetail(row pgxScanner) (*entity.BatchDetail, error) {
	var d entity.BatchDetail
	err := row.Scan(&d.ID, &d.ProductID, &d.SupplierID, &d.BatchNumber, &d.ExpiryDate, &d.Quantity,
		&d.BuyingPrice, &d.UnitPrice, &d.ExpiryAlertDays, &d.CreatedAt, &d.UpdatedAt,
		&d.BrandName, &d.GenericName, &d.SupplierName, &d.IsControlled, &d.ReorderLevel)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *BatchRepo) GetDetail(ctx context.Context, id string) (*entity.BatchDetail, error) {
	d, err := scanBatchDetail(r.q.QueryRow(ctx, batchDetailSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get batch detail", err)
	}
	return d, nil
}

// ListDetails lista lotes con sus datos de producto, ordenados por marca y vencimiento.
func (r *BatchRepo) ListDetails(ctx context.Context, f repository.BatchFilter) ([]*entity.BatchDetail, error) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.brand_name ILIKE $%d OR g.name ILIKE $%d OR b.batch_number ILIKE $%d)", n, n, n))
	}
	if f.InStockOnly {
		conds = append(conds, "b.quantity > 0")
	}
	if f.ControlledOnly {
		conds = append(conds, "p.is_controlled")
	}
	if f.ExcludePlaceholders {
		args = append(args, entity.PlaceholderBatchPrefix+"%")
		conds = append(conds, fmt.Sprintf("b.batch_number NOT ILIKE $%d", len(args)))
	}
	query := batchDetailSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.brand_name, b.expiry_date"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list batches", err)
	}
	defer rows.Close()
	list := []*entity.BatchDetail{}
	for rows.Next() {
		d, err := scanBatchDetail(rows)
		if err != nil {
			return nil, storeErr("scan batch", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list batches", err)
	}
	return list, nil
}
