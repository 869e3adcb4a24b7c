package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas, líneas y recetas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) CreateTransaction(ctx context.Context, tx *entity.SalesTransaction) error {
	query := `
		INSERT INTO sales_transactions (id, receipt_number, client_name, total_amount, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, tx.ID, tx.ReceiptNumber, tx.ClientName, tx.TotalAmount, tx.UserID, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("receipt %q", tx.ReceiptNumber))
		}
		return storeErr("insert sales transaction", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, transaction_id, batch_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, it.ID, it.TransactionID, it.BatchID, it.Quantity, it.UnitPrice, it.Subtotal)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("sale item references: %w", domain.ErrNotFound)
		}
		return storeErr("insert sale item", err)
	}
	return nil
}

func (r *SaleRepo) CreatePrescription(ctx context.Context, p *entity.PrescriptionDetail) error {
	query := `
		INSERT INTO prescription_details (id, transaction_id, patient_age, patient_sex, prescriber_name, medical_institution, dosage_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.TransactionID, p.PatientAge, p.PatientSex, p.PrescriberName,
		p.MedicalInstitution, p.DosageInstructions)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict("prescription for transaction " + p.TransactionID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("transaction %s: %w", p.TransactionID, domain.ErrNotFound)
		}
		return storeErr("insert prescription", err)
	}
	return nil
}

const saleSelect = `
	SELECT t.id, t.receipt_number, t.client_name, t.total_amount, t.user_id, COALESCE(u.username, ''), t.created_at
	FROM sales_transactions t LEFT JOIN users u ON u.id = t.user_id`

func scanSale(row pgxScanner) (*entity.SalesTransaction, error) {
	var t entity.SalesTransaction
	if err := row.Scan(&t.ID, &t.ReceiptNumber, &t.ClientName, &t.TotalAmount, &t.UserID, &t.Username, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SaleRepo) items(ctx context.Context, txID string) ([]entity.SaleItem, error) {
	query := `
		SELECT i.id, i.transaction_id, i.batch_id, p.brand_name, b.batch_number, i.quantity, i.unit_price, i.subtotal
		FROM sale_items i
		JOIN batches b ON b.id = i.batch_id
		JOIN products p ON p.id = b.product_id
		WHERE i.transaction_id = $1`
	rows, err := r.q.Query(ctx, query, txID)
	if err != nil {
		return nil, storeErr("list sale items", err)
	}
	defer rows.Close()
	list := []entity.SaleItem{}
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.BatchID, &it.BrandName, &it.BatchNumber,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, storeErr("scan sale item", err)
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list sale items", err)
	}
	return list, nil
}

func (r *SaleRepo) prescription(ctx context.Context, txID string) (*entity.PrescriptionDetail, error) {
	var p entity.PrescriptionDetail
	err := r.q.QueryRow(ctx, `
		SELECT id, transaction_id, patient_age, patient_sex, prescriber_name, medical_institution, dosage_instructions
		FROM prescription_details WHERE transaction_id = $1`, txID,
	).Scan(&p.ID, &p.TransactionID, &p.PatientAge, &p.PatientSex, &p.PrescriberName, &p.MedicalInstitution, &p.DosageInstructions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get prescription", err)
	}
	return &p, nil
}

// fill completa líneas y receta de cada venta.
func (r *SaleRepo) fill(ctx context.Context, t *entity.SalesTransaction) error {
	items, err := r.items(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Items = items
	t.Prescription, err = r.prescription(ctx, t.ID)
	return err
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.SalesTransaction, error) {
	t, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get sales transaction", err)
	}
	if err := r.fill(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SaleRepo) list(ctx context.Context, f repository.SalesFilter) ([]*entity.SalesTransaction, error) {
	from, toExcl := rangeBounds(f.DateRange)
	query := saleSelect + `
		WHERE ($1::text = '' OR t.user_id::text = $1)
		  AND ($2::timestamptz IS NULL OR t.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR t.created_at < $3)
		ORDER BY t.created_at DESC`
	rows, err := r.q.Query(ctx, query, f.UserID, from, toExcl)
	if err != nil {
		return nil, storeErr("list sales", err)
	}
	defer rows.Close()
	list := []*entity.SalesTransaction{}
	for rows.Next() {
		t, err := scanSale(rows)
		if err != nil {
			return nil, storeErr("scan sale", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list sales", err)
	}
	return list, nil
}

// List ventas más recientes primero, con líneas y receta.
func (r *SaleRepo) List(ctx context.Context, f repository.SalesFilter) ([]*entity.SalesTransaction, error) {
	list, err := r.list(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if err := r.fill(ctx, t); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// PrescriptionBook ventas con receta en el rango, con la lista de medicamentos dispensados.
func (r *SaleRepo) PrescriptionBook(ctx context.Context, dr repository.DateRange) ([]*entity.PrescriptionBookEntry, error) {
	list, err := r.list(ctx, repository.SalesFilter{DateRange: dr})
	if err != nil {
		return nil, err
	}
	out := []*entity.PrescriptionBookEntry{}
	for _, t := range list {
		p, err := r.prescription(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		items, err := r.items(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		entry := &entity.PrescriptionBookEntry{
			TransactionID:      t.ID,
			Date:               t.CreatedAt,
			ReceiptNumber:      t.ReceiptNumber,
			ClientName:         t.ClientName,
			PrescriptionDetail: *p,
		}
		for _, it := range items {
			entry.Medicines = append(entry.Medicines, fmt.Sprintf("%s x%d", it.BrandName, it.Quantity))
		}
		out = append(out, entry)
	}
	return out, nil
}
