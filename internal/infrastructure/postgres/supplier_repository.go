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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo persistencia de proveedores.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierSelect = `SELECT id, name, contact_person, phone, email, created_at FROM suppliers`

func scanSupplier(row pgxScanner) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO suppliers (id, name, contact_person, phone, email, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.ContactPerson, s.Phone, s.Email, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("supplier %q", s.Name))
		}
		return storeErr("insert supplier", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get supplier", err)
	}
	return s, nil
}

// GetByName búsqueda exacta sin distinguir mayúsculas (usada por la importación).
func (r *SupplierRepo) GetByName(ctx context.Context, name string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+` WHERE LOWER(name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get supplier by name", err)
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact_person = $3, phone = $4, email = $5 WHERE id = $1`,
		s.ID, s.Name, s.ContactPerson, s.Phone, s.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("supplier %q", s.Name))
		}
		return storeErr("update supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, supplierSelect+` ORDER BY name`)
	if err != nil {
		return nil, storeErr("list suppliers", err)
	}
	defer rows.Close()
	list := []*entity.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, storeErr("scan supplier", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list suppliers", err)
	}
	return list, nil
}

// Delete elimina el proveedor; los lotes conservan su historial con supplier_id NULL.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
