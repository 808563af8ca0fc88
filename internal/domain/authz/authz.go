// Package authz define el contexto de autenticación explícito que cada caso de uso recibe
// y la única función de chequeo de roles.
package authz

import (
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// Context identidad del llamador, resuelta por la capa HTTP a partir del JWT.
// El valor cero representa una petición sin sesión.
type Context struct {
	UserID string
	Role   string
}

// Authenticated indica si hay sesión.
func (c Context) Authenticated() bool {
	return c.UserID != "" && c.Role != ""
}

// IsStaff indica si el llamador es EMPLOYEE o ADMIN.
func (c Context) IsStaff() bool {
	return c.Role == entity.RoleEmployee || c.Role == entity.RoleAdmin
}

// Authorize verifica la sesión y, si se indican roles, que el rol sea uno de ellos.
// Sin sesión → ErrUnauthorized; rol incorrecto → ErrForbidden.
func Authorize(c Context, required ...string) error {
	if !c.Authenticated() {
		return domain.ErrUnauthorized
	}
	if len(required) == 0 {
		return nil
	}
	for _, r := range required {
		if c.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// Staff roles que gestionan pedidos de terceros.
var Staff = []string{entity.RoleEmployee, entity.RoleAdmin}
