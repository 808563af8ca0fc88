package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea del pedido a crear.
type OrderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest entrada de checkout. P2PVendorID/NewVendor solo para EMPLOYEE/ADMIN.
type CreateOrderRequest struct {
	PhoneNumber string             `json:"phoneNumber"`
	OrderInfo   string             `json:"orderInfo"`
	Address     string             `json:"address"`
	OrderPerson string             `json:"orderPerson"`
	Products    []OrderLineRequest `json:"products"`
	P2PVendorID *string            `json:"p2pVendorId,omitempty"`
	NewVendor   *VendorRequest     `json:"newVendor,omitempty"`
}

// UpdateOrderRequest PATCH de staff: estado y campos de entrega editables.
type UpdateOrderRequest struct {
	Status      *string `json:"status"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	OrderPerson *string `json:"orderPerson"`
	OrderInfo   *string `json:"orderInfo"`
}

// OrderProductResponse línea de pedido con el producto vivo y su precio en el tier del pedido.
type OrderProductResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Total     decimal.Decimal  `json:"total"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// OrderSummary totales calculados con el motor de precios.
type OrderSummary struct {
	Tier             string          `json:"tier"`
	ConsumerSubtotal decimal.Decimal `json:"consumerSubtotal"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TotalQuantity    int             `json:"totalQuantity"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID          string                 `json:"id"`
	OrderNumber int64                  `json:"orderNumber"`
	Status      string                 `json:"status"`
	PhoneNumber string                 `json:"phoneNumber"`
	OrderInfo   string                 `json:"orderInfo"`
	Address     string                 `json:"address"`
	OrderPerson string                 `json:"orderPerson"`
	UserID      string                 `json:"userId"`
	P2PVendorID *string                `json:"p2pVendorId"`
	Vendor      *VendorResponse        `json:"vendor,omitempty"`
	Products    []OrderProductResponse `json:"products"`
	Summary     OrderSummary           `json:"summary"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// OrderStreamEvent payload del canal de eventos:
// {type: PENDING_ORDERS, orders} | {type: NEW_ORDER|ORDER_UPDATED, order} | {type: ORDER_DELETED, orderId}.
type OrderStreamEvent struct {
	Type    string          `json:"type"`
	Order   *OrderResponse  `json:"order,omitempty"`
	Orders  []OrderResponse `json:"orders,omitempty"`
	OrderID string          `json:"orderId,omitempty"`
	SentAt  time.Time       `json:"sentAt"`
}

// PendingOrdersEvent primer evento del canal; orders siempre presente aunque esté vacío.
type PendingOrdersEvent struct {
	Type   string          `json:"type"`
	Orders []OrderResponse `json:"orders"`
	SentAt time.Time       `json:"sentAt"`
}
