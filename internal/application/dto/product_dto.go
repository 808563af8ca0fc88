package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Todos los precios son opcionales.
type CreateProductRequest struct {
	Name          string           `json:"name"`
	CompanyID     string           `json:"companyId"`
	CategoryID    string           `json:"categoryId"`
	Price         *decimal.Decimal `json:"price"`
	ConsumerPrice *decimal.Decimal `json:"consumerPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	RetailPrice   *decimal.Decimal `json:"retailPrice"`
	BulkPrice     *decimal.Decimal `json:"bulkPrice"`
	BulkLimit     *int             `json:"bulkLimit"`
	Image         string           `json:"image"`
	Description   string           `json:"description"`
}

// UpdateProductRequest entrada para actualizar un producto; solo se aplican los campos presentes.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	CompanyID     *string          `json:"companyId"`
	CategoryID    *string          `json:"categoryId"`
	Price         *decimal.Decimal `json:"price"`
	ConsumerPrice *decimal.Decimal `json:"consumerPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	RetailPrice   *decimal.Decimal `json:"retailPrice"`
	BulkPrice     *decimal.Decimal `json:"bulkPrice"`
	BulkLimit     *int             `json:"bulkLimit"`
	Image         *string          `json:"image"`
	Description   *string          `json:"description"`
}

// ProductResponse salida de un producto. Display* se calculan con el rol del llamador.
type ProductResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	CompanyID     string              `json:"companyId"`
	CompanyName   string              `json:"companyName,omitempty"`
	CategoryID    string              `json:"categoryId"`
	CategoryName  string              `json:"categoryName,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	ConsumerPrice decimal.NullDecimal `json:"consumerPrice"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	RetailPrice   decimal.NullDecimal `json:"retailPrice"`
	BulkPrice     decimal.NullDecimal `json:"bulkPrice"`
	BulkLimit     *int                `json:"bulkLimit"`
	Image         string              `json:"image"`
	Description   string              `json:"description"`

	DisplayPrice    decimal.Decimal  `json:"displayPrice"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	DiscountPercent *int64           `json:"discountPercent,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductQuery filtros del catálogo público.
type ProductQuery struct {
	PageRequest
	CategoryID string `query:"categoryId"`
	CompanyID  string `query:"companyId"`
	Search     string `query:"search"`
}
