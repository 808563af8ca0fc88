package entity

import (
	"time"

	"github.com/jhoicas/snacks-api/internal/domain"
)

// Estados del ciclo de vida de un pedido.
//
//	ACCEPTED → IN_TRANSIT → DELIVERED
//	ACCEPTED | IN_TRANSIT → CANCELLED
//
// DELIVERED y CANCELLED son terminales.
const (
	OrderStatusAccepted  = "ACCEPTED"
	OrderStatusInTransit = "IN_TRANSIT"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// CustomerCancelWindow ventana en la que el dueño del pedido puede cancelarlo.
const CustomerCancelWindow = 10 * time.Minute

// Order pedido de la tienda. Los precios NO se congelan: cada cálculo financiero relee el
// producto vivo a través de OrderProduct.Product.
type Order struct {
	ID          string
	OrderNumber int64
	Status      string
	PhoneNumber string
	OrderInfo   string // resumen legible del pedido
	Address     string
	OrderPerson string // persona de contacto para la entrega
	UserID      string
	P2PVendorID *string
	Tier        string // tier con el que se cotizó al crearlo ("consumer" | "bulk")
	Products    []OrderProduct
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Vendor *Vendor // cargado cuando P2PVendorID no es nil
}

// OrderProduct línea de un pedido.
type OrderProduct struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Product   *Product // fila viva del producto al momento de la lectura
}

// IsValidOrderStatus indica si s es uno de los cuatro estados conocidos.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusAccepted, OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal indica si el estado ya no admite transiciones.
func IsTerminal(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// CanTransition valida una transición del ciclo de vida lineal.
// Repetir el estado actual no es una transición y se considera válido.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderStatusAccepted:
		return to == OrderStatusInTransit || to == OrderStatusCancelled
	case OrderStatusInTransit:
		return to == OrderStatusDelivered || to == OrderStatusCancelled
	}
	return false
}

// CheckCustomerCancel aplica las reglas de autocancelación del cliente en el instante now.
// La ventana se evalúa de forma perezosa (no hay temporizador).
func (o *Order) CheckCustomerCancel(now time.Time) error {
	switch o.Status {
	case OrderStatusCancelled:
		return domain.NewRuleError(domain.ErrConflict, domain.CodeAlreadyCancelled, "Order is already cancelled")
	case OrderStatusDelivered:
		return domain.NewRuleError(domain.ErrConflict, domain.CodeAlreadyDelivered, "Order has already been delivered")
	}
	if now.Sub(o.CreatedAt) > CustomerCancelWindow {
		return domain.NewRuleError(domain.ErrConflict, domain.CodeCancelWindow, "Order cannot be cancelled as rider is on the way")
	}
	return nil
}

// TotalQuantity suma de unidades de todas las líneas.
func (o *Order) TotalQuantity() int {
	n := 0
	for _, p := range o.Products {
		n += p.Quantity
	}
	return n
}
