package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, batch_id, type, delta, reason, user_id, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, m.ID, m.BatchID, string(m.Type), m.Delta, m.Reason, m.UserID, m.TransactionID, m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("movement references: %w", domain.ErrNotFound)
		}
		return storeErr("insert movement", err)
	}
	return nil
}

const movementColumns = `m.id, m.batch_id, m.type, m.delta, m.reason, m.user_id, m.transaction_id, m.created_at`

func scanMovementInto(m *entity.Movement, extra ...any) []any {
	return append([]any{&m.ID, &m.BatchID, &m.Type, &m.Delta, &m.Reason, &m.UserID, &m.TransactionID, &m.CreatedAt}, extra...)
}

func (r *MovementRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements m WHERE m.batch_id = $1 ORDER BY m.created_at, m.seq`, batchID)
	if err != nil {
		return nil, storeErr("list movements by batch", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(scanMovementInto(&m)...); err != nil {
			return nil, storeErr("scan movement", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list movements by batch", err)
	}
	return list, nil
}

// List auditoría: movimientos más recientes primero, opcionalmente de un número de lote.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + `, p.brand_name, b.batch_number, COALESCE(u.username, '')
		FROM movements m
		JOIN batches b ON b.id = m.batch_id
		JOIN products p ON p.id = b.product_id
		LEFT JOIN users u ON u.id = m.user_id
		WHERE ($1::text = '' OR b.batch_number = $1)
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT $2`
	var lim *int
	if f.Limit > 0 {
		lim = &f.Limit
	}
	rows, err := r.q.Query(ctx, query, f.BatchNumber, lim)
	if err != nil {
		return nil, storeErr("list movements", err)
	}
	defer rows.Close()
	list := []*entity.MovementRecord{}
	for rows.Next() {
		var rec entity.MovementRecord
		if err := rows.Scan(scanMovementInto(&rec.Movement, &rec.BrandName, &rec.BatchNumber, &rec.Username)...); err != nil {
			return nil, storeErr("scan movement", err)
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list movements", err)
	}
	return list, nil
}

// ListForLedger movimientos en orden cronológico con los datos del asiento (proveedor, cliente, recibo).
func (r *MovementRepo) ListForLedger(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerMovement, error) {
	from, toExcl := rangeBounds(f.DateRange)
	query := `
		SELECT ` + movementColumns + `, p.id, p.brand_name, b.batch_number, COALESCE(u.username, ''),
			COALESCE(s.name, ''), COALESCE(t.client_name, ''), COALESCE(t.receipt_number, '')
		FROM movements m
		JOIN batches b ON b.id = m.batch_id
		JOIN products p ON p.id = b.product_id
		LEFT JOIN users u ON u.id = m.user_id
		LEFT JOIN suppliers s ON s.id = b.supplier_id
		LEFT JOIN sales_transactions t ON t.id = m.transaction_id
		WHERE (NOT $1::boolean OR p.is_controlled)
		  AND ($2::text = '' OR p.id::text = $2)
		  AND ($3::timestamptz IS NULL OR m.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR m.created_at < $4)
		ORDER BY m.created_at, m.seq`
	rows, err := r.q.Query(ctx, query, f.ControlledOnly, f.ProductID, from, toExcl)
	if err != nil {
		return nil, storeErr("list ledger movements", err)
	}
	defer rows.Close()
	list := []*entity.LedgerMovement{}
	for rows.Next() {
		var lm entity.LedgerMovement
		dest := scanMovementInto(&lm.Movement, &lm.ProductID, &lm.BrandName, &lm.BatchNumber, &lm.Username,
			&lm.SupplierName, &lm.ClientName, &lm.ReceiptNumber)
		if err := rows.Scan(dest...); err != nil {
			return nil, storeErr("scan ledger movement", err)
		}
		list = append(list, &lm)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list ledger movements", err)
	}
	return list, nil
}
