package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
)

// NewProductResponse mapea el producto; el precio mostrado y el descuento dependen del rol.
func NewProductResponse(p *entity.Product, role string) *ProductResponse {
	if p == nil {
		return nil
	}
	prices := pricing.ResolvePrices(*p)
	display := prices.Consumer
	if role == entity.RoleEmployee {
		display = prices.Bulk
	}
	out := &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		CompanyID:     p.CompanyID,
		CompanyName:   p.CompanyName,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		Price:         p.Price,
		ConsumerPrice: p.ConsumerPrice,
		OriginalPrice: p.OriginalPrice,
		RetailPrice:   p.RetailPrice,
		BulkPrice:     p.BulkPrice,
		BulkLimit:     p.BulkLimit,
		Image:         p.ImageURL,
		Description:   p.Description,
		DisplayPrice:  display,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if amount, pct, ok := pricing.Discount(prices, role); ok {
		out.Discount = &amount
		out.DiscountPercent = &pct
	}
	return out
}

// NewVendorResponse mapea un vendor.
func NewVendorResponse(v *entity.Vendor) *VendorResponse {
	if v == nil {
		return nil
	}
	return &VendorResponse{
		ID:          v.ID,
		Name:        v.Name,
		PhoneNumber: v.PhoneNumber,
		Address:     v.Address,
		CreatedBy:   v.CreatedBy,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// NewOrderResponse mapea un pedido y lo cotiza con el producto vivo de cada línea.
func NewOrderResponse(o *entity.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	q := pricing.QuoteOrder(o)
	products := make([]OrderProductResponse, 0, len(o.Products))
	for i, line := range o.Products {
		lr := OrderProductResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: decimal.Zero,
			Total:     decimal.Zero,
		}
		if i < len(q.Lines) {
			lr.UnitPrice = q.Lines[i].UnitPrice
			lr.Total = q.Lines[i].Total
		}
		if line.Product != nil {
			// el precio mostrado de la línea sigue el tier del pedido, no el rol del lector
			role := entity.RoleUser
			if q.Tier == pricing.TierBulk {
				role = entity.RoleEmployee
			}
			lr.Product = NewProductResponse(line.Product, role)
		}
		products = append(products, lr)
	}
	return &OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		PhoneNumber: o.PhoneNumber,
		OrderInfo:   o.OrderInfo,
		Address:     o.Address,
		OrderPerson: o.OrderPerson,
		UserID:      o.UserID,
		P2PVendorID: o.P2PVendorID,
		Vendor:      NewVendorResponse(o.Vendor),
		Products:    products,
		Summary: OrderSummary{
			Tier:             string(q.Tier),
			ConsumerSubtotal: q.ConsumerSubtotal,
			Subtotal:         q.Subtotal,
			TotalQuantity:    o.TotalQuantity(),
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// NewOrderList mapea una lista de pedidos preservando el orden.
func NewOrderList(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, *NewOrderResponse(o))
	}
	return out
}

// NewUserResponse mapea un usuario sin exponer el hash.
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		City:        u.City,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
