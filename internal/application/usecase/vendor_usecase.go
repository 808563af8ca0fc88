package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// VendorUseCase gestión de vendors P2P (EMPLOYEE/ADMIN).
type VendorUseCase struct {
	repo repository.VendorRepository
}

// NewVendorUseCase construye el caso de uso.
func NewVendorUseCase(repo repository.VendorRepository) *VendorUseCase {
	return &VendorUseCase{repo: repo}
}

// Create da de alta un vendor; nombre y teléfono obligatorios.
func (uc *VendorUseCase) Create(ctx context.Context, auth authz.Context, in dto.VendorRequest) (*dto.VendorResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	if err := order.ValidateVendor(in); err != nil {
		return nil, err
	}
	now := time.Now()
	v := &entity.Vendor{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
		CreatedBy:   auth.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return dto.NewVendorResponse(v), nil
}

// Get obtiene un vendor.
func (uc *VendorUseCase) Get(ctx context.Context, auth authz.Context, id string) (*dto.VendorResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewVendorResponse(v), nil
}

// List todos los vendors.
func (uc *VendorUseCase) List(ctx context.Context, auth authz.Context) ([]dto.VendorResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendorResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *dto.NewVendorResponse(v))
	}
	return out, nil
}

// Update reemplaza los datos del vendor.
func (uc *VendorUseCase) Update(ctx context.Context, auth authz.Context, id string, in dto.VendorRequest) (*dto.VendorResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	if err := order.ValidateVendor(in); err != nil {
		return nil, err
	}
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	v.Name = strings.TrimSpace(in.Name)
	v.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	v.Address = strings.TrimSpace(in.Address)
	v.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return dto.NewVendorResponse(v), nil
}

// Delete borra el vendor (ADMIN); ErrConflict si tiene pedidos.
func (uc *VendorUseCase) Delete(ctx context.Context, auth authz.Context, id string) error {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return err
	}
	return referenced(uc.repo.Delete(ctx, id), "Vendor has orders and cannot be deleted")
}
