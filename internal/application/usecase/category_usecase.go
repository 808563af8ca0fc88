package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías. Lectura pública, escritura ADMIN.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría.
func (uc *CategoryUseCase) Create(ctx context.Context, auth authz.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	now := time.Now()
	c := &entity.Category{ID: uuid.New().String(), Name: strings.TrimSpace(in.Name), CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// List todas las categorías.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update renombra la categoría.
func (uc *CategoryUseCase) Update(ctx context.Context, auth authz.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Name = strings.TrimSpace(in.Name)
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Delete borra la categoría; ErrConflict si hay productos en ella.
func (uc *CategoryUseCase) Delete(ctx context.Context, auth authz.Context, id string) error {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return err
	}
	return referenced(uc.repo.Delete(ctx, id), "Category has products and cannot be deleted")
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// referenced traduce el ErrConflict de un borrado con referencias a un rechazo con mensaje.
func referenced(err error, msg string) error {
	if errors.Is(err, domain.ErrConflict) {
		return domain.NewRuleError(domain.ErrConflict, domain.CodeReferenced, msg)
	}
	return err
}
