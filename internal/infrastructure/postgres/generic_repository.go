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

var _ repository.GenericRepository = (*GenericRepo)(nil)

// GenericRepo persistencia de nombres genéricos.
type GenericRepo struct {
	q Querier
}

// NewGenericRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGenericRepository(q Querier) *GenericRepo {
	return &GenericRepo{q: q}
}

func (r *GenericRepo) Create(ctx context.Context, g *entity.GenericDrug) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO generic_drugs (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		g.ID, g.Name, g.Description, g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("generic %q", g.Name))
		}
		return storeErr("insert generic", err)
	}
	return nil
}

func (r *GenericRepo) GetByID(ctx context.Context, id string) (*entity.GenericDrug, error) {
	var g entity.GenericDrug
	err := r.q.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM generic_drugs WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get generic", err)
	}
	return &g, nil
}

func (r *GenericRepo) Update(ctx context.Context, g *entity.GenericDrug) error {
	cmd, err := r.q.Exec(ctx, `UPDATE generic_drugs SET name = $2, description = $3 WHERE id = $1`,
		g.ID, g.Name, g.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return conflict(fmt.Sprintf("generic %q", g.Name))
		}
		return storeErr("update generic", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("generic %s: %w", g.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *GenericRepo) List(ctx context.Context) ([]*entity.GenericDrug, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description, created_at FROM generic_drugs ORDER BY name`)
	if err != nil {
		return nil, storeErr("list generics", err)
	}
	defer rows.Close()
	list := []*entity.GenericDrug{}
	for rows.Next() {
		var g entity.GenericDrug
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, storeErr("scan generic", err)
		}
		list = append(list, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list generics", err)
	}
	return list, nil
}

// Delete elimina el genérico; los productos que lo usaban quedan sin genérico (ON DELETE SET NULL).
func (r *GenericRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM generic_drugs WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete generic", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("generic %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
