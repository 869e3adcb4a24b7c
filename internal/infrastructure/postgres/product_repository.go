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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productSelect = `
	SELECT p.id, p.brand_name, p.generic_id, COALESCE(g.name, ''), p.is_controlled, p.reorder_level, p.created_at, p.updated_at
	FROM products p LEFT JOIN generic_drugs g ON g.id = p.generic_id`

func scanProduct(row pgxScanner) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.BrandName, &p.GenericID, &p.GenericName, &p.IsControlled, &p.ReorderLevel, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, brand_name, generic_id, is_controlled, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.BrandName, p.GenericID, p.IsControlled, p.ReorderLevel, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("product %q", p.BrandName))
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("generic %s: %w", derefString(p.GenericID), domain.ErrNotFound)
		}
		return storeErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get product", err)
	}
	return p, nil
}

// GetByBrandName busca por marca sin distinguir mayúsculas.
func (r *ProductRepo) GetByBrandName(ctx context.Context, brandName string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE LOWER(p.brand_name) = LOWER($1)`, brandName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get product by brand", err)
	}
	return p, nil
}

// Update actualiza marca, genérico, flag de controlado y nivel de reorden.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET brand_name = $2, generic_id = $3, is_controlled = $4, reorder_level = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, p.ID, p.BrandName, p.GenericID, p.IsControlled, p.ReorderLevel, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("product %q", p.BrandName))
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("generic %s: %w", derefString(p.GenericID), domain.ErrNotFound)
		}
		return storeErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista productos por marca con búsqueda opcional y paginación.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	query := productSelect + `
		WHERE ($1::text = '' OR p.brand_name ILIKE '%' || $1 || '%' OR g.name ILIKE '%' || $1 || '%')
		ORDER BY p.brand_name LIMIT $2 OFFSET $3`
	var lim *int // NULL = sin límite
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.q.Query(ctx, query, strings.TrimSpace(search), lim, offset)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list products", err)
	}
	return list, nil
}

// Delete elimina un producto. Falla con Conflict si aún tiene lotes.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("product %s still has batches: %w", id, domain.ErrConflict)
		}
		return storeErr("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
