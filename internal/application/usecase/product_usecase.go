package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// ProductUseCase CRUD del catálogo. Lectura pública (precio mostrado según el rol), escritura ADMIN.
type ProductUseCase struct {
	repo       repository.ProductRepository
	companies  repository.CompanyRepository
	categories repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, companies repository.CompanyRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, companies: companies, categories: categories}
}

// Create crea un producto. Los precios son opcionales pero no negativos.
func (uc *ProductUseCase) Create(ctx context.Context, auth authz.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if err := validatePrices(map[string]*decimal.Decimal{
		"price": in.Price, "consumerPrice": in.ConsumerPrice, "originalPrice": in.OriginalPrice,
		"retailPrice": in.RetailPrice, "bulkPrice": in.BulkPrice,
	}, in.BulkLimit); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Product{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		CompanyID:     in.CompanyID,
		CategoryID:    in.CategoryID,
		Price:         nullable(in.Price),
		ConsumerPrice: nullable(in.ConsumerPrice),
		OriginalPrice: nullable(in.OriginalPrice),
		RetailPrice:   nullable(in.RetailPrice),
		BulkPrice:     nullable(in.BulkPrice),
		BulkLimit:     in.BulkLimit,
		ImageURL:      strings.TrimSpace(in.Image),
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.resolveRefs(ctx, p); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return dto.NewProductResponse(p, auth.Role), nil
}

// GetByID obtiene un producto con el precio mostrado para el rol del llamador.
func (uc *ProductUseCase) GetByID(ctx context.Context, auth authz.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewProductResponse(p, auth.Role), nil
}

// List catálogo filtrado y paginado.
func (uc *ProductUseCase) List(ctx context.Context, auth authz.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		CategoryID: q.CategoryID,
		CompanyID:  q.CompanyID,
		Search:     strings.TrimSpace(q.Search),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.NewProductResponse(p, auth.Role))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// Update aplica solo los campos presentes.
func (uc *ProductUseCase) Update(ctx context.Context, auth authz.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.NewValidationError("name", "name must not be empty")
	}
	if err := validatePrices(map[string]*decimal.Decimal{
		"price": in.Price, "consumerPrice": in.ConsumerPrice, "originalPrice": in.OriginalPrice,
		"retailPrice": in.RetailPrice, "bulkPrice": in.BulkPrice,
	}, in.BulkLimit); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.CompanyID != nil {
		p.CompanyID = *in.CompanyID
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		p.Price = nullable(in.Price)
	}
	if in.ConsumerPrice != nil {
		p.ConsumerPrice = nullable(in.ConsumerPrice)
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = nullable(in.OriginalPrice)
	}
	if in.RetailPrice != nil {
		p.RetailPrice = nullable(in.RetailPrice)
	}
	if in.BulkPrice != nil {
		p.BulkPrice = nullable(in.BulkPrice)
	}
	if in.BulkLimit != nil {
		p.BulkLimit = in.BulkLimit
	}
	if in.Image != nil {
		p.ImageURL = strings.TrimSpace(*in.Image)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if err := uc.resolveRefs(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return dto.NewProductResponse(p, auth.Role), nil
}

// Delete borra el producto; ErrConflict si hay líneas de pedido que lo referencian.
func (uc *ProductUseCase) Delete(ctx context.Context, auth authz.Context, id string) error {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return err
	}
	return referenced(uc.repo.Delete(ctx, id), "Product appears in orders and cannot be deleted")
}

// resolveRefs verifica marca y categoría y completa sus nombres desnormalizados.
func (uc *ProductUseCase) resolveRefs(ctx context.Context, p *entity.Product) error {
	if strings.TrimSpace(p.CompanyID) == "" {
		return domain.NewValidationError("companyId", "companyId is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return domain.NewValidationError("categoryId", "categoryId is required")
	}
	company, err := uc.companies.GetByID(ctx, p.CompanyID)
	if err != nil {
		return fmt.Errorf("producto: leer marca: %w", err)
	}
	if company == nil {
		return domain.NewValidationError("companyId", "company does not exist")
	}
	category, err := uc.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return fmt.Errorf("producto: leer categoría: %w", err)
	}
	if category == nil {
		return domain.NewValidationError("categoryId", "category does not exist")
	}
	p.CompanyName = company.Name
	p.CategoryName = category.Name
	return nil
}

// validatePrices en orden estable para que el campo reportado sea determinista.
func validatePrices(prices map[string]*decimal.Decimal, bulkLimit *int) error {
	for _, field := range []string{"price", "consumerPrice", "originalPrice", "retailPrice", "bulkPrice"} {
		if v := prices[field]; v != nil && v.IsNegative() {
			return domain.NewValidationError(field, field+" must not be negative")
		}
	}
	if bulkLimit != nil && *bulkLimit < 0 {
		return domain.NewValidationError("bulkLimit", "bulkLimit must not be negative")
	}
	return nil
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
