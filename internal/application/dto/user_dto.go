package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest entrada para registro de clientes (rol USER).
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateProfileRequest formulario de cuenta; solo se aplican los campos presentes.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	PhoneNumber *string `json:"phoneNumber"`
}

// CreateEmployeeRequest alta de un empleado (crea el usuario con rol EMPLOYEE).
type CreateEmployeeRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Name        string          `json:"name"`
	PhoneNumber string          `json:"phoneNumber"`
	Department  string          `json:"department"`
	Position    string          `json:"position"`
	Salary      decimal.Decimal `json:"salary"`
}

// UpdateEmployeeRequest cambios sobre un empleado.
type UpdateEmployeeRequest struct {
	Name        *string          `json:"name"`
	PhoneNumber *string          `json:"phoneNumber"`
	Department  *string          `json:"department"`
	Position    *string          `json:"position"`
	Salary      *decimal.Decimal `json:"salary"`
}

// EmployeeResponse salida de un empleado.
type EmployeeResponse struct {
	UserID     string          `json:"userId"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Department string          `json:"department"`
	Position   string          `json:"position"`
	Salary     decimal.Decimal `json:"salary"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CreateAdminRequest alta de un administrador.
type CreateAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
}

// UpdateAdminRequest cambios sobre un administrador.
type UpdateAdminRequest struct {
	Name  *string `json:"name"`
	Level *int    `json:"level"`
}

// AdminResponse salida de un administrador.
type AdminResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}
