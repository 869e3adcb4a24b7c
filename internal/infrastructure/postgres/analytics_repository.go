package postgres

import (
	"context"

	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados de ventas (solo lectura).
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// salesWhere filtro común sobre sales_transactions t: $1 usuario, $2 desde, $3 hasta (exclusivo).
const salesWhere = `
	($1::text = '' OR t.user_id::text = $1)
	AND ($2::timestamptz IS NULL OR t.created_at >= $2)
	AND ($3::timestamptz IS NULL OR t.created_at < $3)`

func salesArgs(f repository.SalesFilter) []any {
	from, toExcl := rangeBounds(f.DateRange)
	return []any{f.UserID, from, toExcl}
}

// Summary ingresos, utilidad y número de ventas.
func (r *AnalyticsRepo) Summary(ctx context.Context, f repository.SalesFilter) (entity.SalesSummary, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(i.subtotal) FROM sale_items i JOIN sales_transactions t ON t.id = i.transaction_id WHERE ` + salesWhere + `), 0),
			COALESCE((SELECT SUM((i.unit_price - b.buying_price) * i.quantity)
				FROM sale_items i
				JOIN sales_transactions t ON t.id = i.transaction_id
				JOIN batches b ON b.id = i.batch_id
				WHERE ` + salesWhere + `), 0),
			(SELECT COUNT(*) FROM sales_transactions t WHERE ` + salesWhere + `)`
	var s entity.SalesSummary
	if err := r.q.QueryRow(ctx, query, salesArgs(f)...).Scan(&s.Revenue, &s.Profit, &s.TransactionCount); err != nil {
		return entity.SalesSummary{}, storeErr("sales summary", err)
	}
	return s, nil
}

// DailySales total vendido por día (UTC), ascendente.
func (r *AnalyticsRepo) DailySales(ctx context.Context, f repository.SalesFilter) ([]entity.DailySales, error) {
	query := `
		SELECT date_trunc('day', t.created_at AT TIME ZONE 'UTC') AS day, SUM(t.total_amount)
		FROM sales_transactions t
		WHERE ` + salesWhere + `
		GROUP BY day ORDER BY day`
	rows, err := r.q.Query(ctx, query, salesArgs(f)...)
	if err != nil {
		return nil, storeErr("daily sales", err)
	}
	defer rows.Close()
	out := []entity.DailySales{}
	for rows.Next() {
		var d entity.DailySales
		if err := rows.Scan(&d.Date, &d.Sales); err != nil {
			return nil, storeErr("scan daily sales", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("daily sales", err)
	}
	return out, nil
}

// TopBrandsByProfit marcas con mayor utilidad, descendente.
func (r *AnalyticsRepo) TopBrandsByProfit(ctx context.Context, f repository.SalesFilter, limit int) ([]entity.BrandProfit, error) {
	query := `
		SELECT p.brand_name, SUM((i.unit_price - b.buying_price) * i.quantity) AS profit
		FROM sale_items i
		JOIN sales_transactions t ON t.id = i.transaction_id
		JOIN batches b ON b.id = i.batch_id
		JOIN products p ON p.id = b.product_id
		WHERE ` + salesWhere + `
		GROUP BY p.brand_name
		ORDER BY profit DESC, p.brand_name
		LIMIT $4`
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.q.Query(ctx, query, append(salesArgs(f), lim)...)
	if err != nil {
		return nil, storeErr("top brands", err)
	}
	defer rows.Close()
	out := []entity.BrandProfit{}
	for rows.Next() {
		var bp entity.BrandProfit
		if err := rows.Scan(&bp.BrandName, &bp.Profit); err != nil {
			return nil, storeErr("scan top brands", err)
		}
		out = append(out, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("top brands", err)
	}
	return out, nil
}

// ReportLines una fila por venta con ingreso y utilidad, más recientes primero.
func (r *AnalyticsRepo) ReportLines(ctx context.Context, f repository.SalesFilter) ([]entity.SalesReportLine, error) {
	query := `
		SELECT t.created_at, t.receipt_number, t.client_name, COALESCE(u.username, ''), t.total_amount,
			COALESCE((SELECT SUM((i.unit_price - b.buying_price) * i.quantity)
				FROM sale_items i JOIN batches b ON b.id = i.batch_id
				WHERE i.transaction_id = t.id), 0)
		FROM sales_transactions t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE ` + salesWhere + `
		ORDER BY t.created_at DESC`
	rows, err := r.q.Query(ctx, query, salesArgs(f)...)
	if err != nil {
		return nil, storeErr("sales report", err)
	}
	defer rows.Close()
	out := []entity.SalesReportLine{}
	for rows.Next() {
		var l entity.SalesReportLine
		if err := rows.Scan(&l.Date, &l.ReceiptNumber, &l.ClientName, &l.Username, &l.Revenue, &l.Profit); err != nil {
			return nil, storeErr("scan sales report", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("sales report", err)
	}
	return out, nil
}
