package repository

import (
	"context"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context) ([]*entity.Category, error)
	// Delete devuelve domain.ErrConflict si algún producto la referencia.
	Delete(ctx context.Context, id string) error
}
