package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// ValidationError error de validación asociado a un campo concreto del request.
// errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// RuleError rechazo de una regla de negocio con un mensaje pensado para el usuario final
// (ej. "Order cannot be cancelled as rider is on the way").
// Kind indica la categoría (ErrInvalidInput o ErrConflict) para el mapeo HTTP.
type RuleError struct {
	Code    string
	Message string
	Kind    error
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Kind }

// Códigos de reglas de negocio expuestos al cliente.
const (
	CodeMinimumOrder      = "MINIMUM_ORDER"
	CodeAlreadyCancelled  = "ALREADY_CANCELLED"
	CodeAlreadyDelivered  = "ALREADY_DELIVERED"
	CodeCancelWindow      = "CANCEL_WINDOW_ELAPSED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeVendorRequired    = "VENDOR_REQUIRED"
	CodeReferenced        = "REFERENCED"
	CodeSelfDelete        = "SELF_DELETE"
	CodeStaleOrder        = "ORDER_CHANGED"
)

// NewRuleError construye un RuleError.
func NewRuleError(kind error, code, message string) *RuleError {
	return &RuleError{Code: code, Message: message, Kind: kind}
}

// ErrStaleOrder el estado del pedido cambió entre la lectura y la escritura.
var ErrStaleOrder = NewRuleError(ErrConflict, CodeStaleOrder, "Order was updated meanwhile, please reload it")
