package entity

import "time"

// Vendor tienda/punto de venta P2P en cuyo nombre un empleado hace pedidos.
type Vendor struct {
	ID          string
	Name        string
	Address     string
	PhoneNumber string
	CreatedBy   string // user_id del empleado/admin que lo creó
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
