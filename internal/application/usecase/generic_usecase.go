package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
)

// GenericUseCase CRUD de nombres genéricos (principios activos).
type GenericUseCase struct {
	repo repository.GenericRepository
}

// NewGenericUseCase construye el caso de uso.
func NewGenericUseCase(repo repository.GenericRepository) *GenericUseCase {
	return &GenericUseCase{repo: repo}
}

func (uc *GenericUseCase) Create(ctx context.Context, in dto.GenericRequest) (*dto.GenericResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	g := &entity.GenericDrug{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return toGenericResponse(g), nil
}

func (uc *GenericUseCase) GetByID(ctx context.Context, id string) (*dto.GenericResponse, error) {
	g, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("generic %s: %w", id, domain.ErrNotFound)
	}
	return toGenericResponse(g), nil
}

func (uc *GenericUseCase) Update(ctx context.Context, id string, in dto.GenericRequest) (*dto.GenericResponse, error) {
	g, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("generic %s: %w", id, domain.ErrNotFound)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	g.Name = name
	g.Description = strings.TrimSpace(in.Description)
	if err := uc.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return toGenericResponse(g), nil
}

func (uc *GenericUseCase) List(ctx context.Context) ([]dto.GenericResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GenericResponse, 0, len(list))
	for _, g := range list {
		out = append(out, *toGenericResponse(g))
	}
	return out, nil
}

// Delete elimina el genérico; sus productos quedan sin genérico.
func (uc *GenericUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toGenericResponse(g *entity.GenericDrug) *dto.GenericResponse {
	return &dto.GenericResponse{ID: g.ID, Name: g.Name, Description: g.Description, CreatedAt: g.CreatedAt}
}
