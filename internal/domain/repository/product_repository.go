package repository

import (
	"context"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// ProductFilter filtros del catálogo público.
type ProductFilter struct {
	CategoryID string
	CompanyID  string
	Search     string // coincidencia parcial en el nombre, sin distinguir mayúsculas
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve los productos encontrados indexados por ID; los faltantes no aparecen.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Delete devuelve domain.ErrConflict si hay líneas de pedido que lo referencian.
	Delete(ctx context.Context, id string) error
}
