package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AddCartItemRequest agrega un producto al carrito activo.
type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest fija la cantidad; menor a 1 elimina la línea.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// SelectVendorRequest selecciona el vendor activo; null vuelve al carrito propio.
type SelectVendorRequest struct {
	VendorID *string `json:"vendorId"`
}

// ImportCartRequest snapshot del carrito guardado en el cliente (forma actual o legacy).
type ImportCartRequest struct {
	Snapshot json.RawMessage `json:"snapshot"`
}

// CheckoutRequest datos de entrega para convertir el carrito activo en pedido.
type CheckoutRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OrderInfo   string `json:"orderInfo"`
	Address     string `json:"address"`
	OrderPerson string `json:"orderPerson"`
}

// CartItemResponse línea del carrito activo cotizada.
type CartItemResponse struct {
	Product   ProductResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// CartQuote cotización del carrito activo.
type CartQuote struct {
	Tier             string          `json:"tier"`
	ConsumerSubtotal decimal.Decimal `json:"consumerSubtotal"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	BulkEligible     bool            `json:"bulkEligible"`
	AmountToBulk     decimal.Decimal `json:"amountToBulk"`
	MeetsMinimum     bool            `json:"meetsMinimum"`
	MinimumOrder     decimal.Decimal `json:"minimumOrder"`
}

// CartNotice notificación efímera (ej. bulk desbloqueado).
type CartNotice struct {
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	DismissAfterMs int64  `json:"dismissAfterMs"`
}

// CartResponse estado del carrito activo.
type CartResponse struct {
	ActiveVendorID *string            `json:"activeVendorId"`
	Buckets        map[string]int     `json:"buckets"` // clave → cantidad de líneas
	Items          []CartItemResponse `json:"items"`
	Quote          CartQuote          `json:"quote"`
	Notices        []CartNotice       `json:"notices,omitempty"`
}

// CartVendorResponse vendor creado desde el carrito y el carrito ya cambiado a ese vendor.
type CartVendorResponse struct {
	Vendor VendorResponse `json:"vendor"`
	Cart   CartResponse   `json:"cart"`
}
