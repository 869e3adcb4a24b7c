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

// ProductUseCase casos de uso CRUD para productos. La cantidad vive en los lotes y se mueve con el libro.
type ProductUseCase struct {
	repo     repository.ProductRepository
	generics repository.GenericRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, generics repository.GenericRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, generics: generics}
}

// Create crea un nuevo producto. BrandName es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	brand := strings.TrimSpace(in.BrandName)
	if brand == "" {
		return nil, fmt.Errorf("brand name is required: %w", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByBrandName(ctx, brand)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("product %q already exists: %w", brand, domain.ErrConflict)
	}
	reorder := entity.DefaultReorderLevel
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, fmt.Errorf("reorder level cannot be negative: %w", domain.ErrInvalidInput)
		}
		reorder = *in.ReorderLevel
	}
	genericID, err := uc.resolveGeneric(ctx, in.GenericID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		BrandName:    brand,
		GenericID:    genericID,
		IsControlled: in.IsControlled,
		ReorderLevel: reorder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, product.ID)
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos informados. GenericID vacío desvincula el genérico.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if in.BrandName != nil {
		brand := strings.TrimSpace(*in.BrandName)
		if brand == "" {
			return nil, fmt.Errorf("brand name cannot be empty: %w", domain.ErrInvalidInput)
		}
		product.BrandName = brand
	}
	if in.GenericID != nil {
		if product.GenericID, err = uc.resolveGeneric(ctx, *in.GenericID); err != nil {
			return nil, err
		}
	}
	if in.IsControlled != nil {
		product.IsControlled = *in.IsControlled
	}
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, fmt.Errorf("reorder level cannot be negative: %w", domain.ErrInvalidInput)
		}
		product.ReorderLevel = *in.ReorderLevel
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// List lista productos por marca o genérico con paginación.
func (uc *ProductUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto sin lotes; con lotes devuelve ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) resolveGeneric(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	g, err := uc.generics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("generic %s: %w", id, domain.ErrNotFound)
	}
	return &g.ID, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		BrandName:    p.BrandName,
		GenericID:    p.GenericID,
		GenericName:  p.GenericName,
		IsControlled: p.IsControlled,
		ReorderLevel: p.ReorderLevel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
