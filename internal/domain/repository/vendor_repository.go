package repository

import (
	"context"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// VendorRepository define el puerto de persistencia para los vendors P2P.
type VendorRepository interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
	Update(ctx context.Context, vendor *entity.Vendor) error
	List(ctx context.Context) ([]*entity.Vendor, error)
	// Delete devuelve domain.ErrConflict si algún pedido lo referencia.
	Delete(ctx context.Context, id string) error
}
