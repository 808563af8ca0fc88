package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles válidos para User. Es el único eje de autorización.
const (
	RoleUser     = "USER"
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
)

// IsValidRole indica si r es uno de los roles conocidos.
func IsValidRole(r string) bool {
	return r == RoleUser || r == RoleEmployee || r == RoleAdmin
}

// User representa una cuenta de la tienda.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // USER, EMPLOYEE, ADMIN
	Address      string
	City         string
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Employee extensión de User para el personal que hace pedidos P2P.
type Employee struct {
	UserID     string
	Department string
	Position   string
	Salary     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
	User       *User // cargado en listados
}

// Admin extensión de User para administradores de la consola.
type Admin struct {
	UserID    string
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
	User      *User // cargado en listados
}
