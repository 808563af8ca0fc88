package repository

import (
	"context"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
}

// EmployeeRepository perfil de empleado (1:1 con users).
type EmployeeRepository interface {
	Create(ctx context.Context, e *entity.Employee) error
	GetByUserID(ctx context.Context, userID string) (*entity.Employee, error)
	Update(ctx context.Context, e *entity.Employee) error
	List(ctx context.Context) ([]*entity.Employee, error)
	Delete(ctx context.Context, userID string) error
}

// AdminRepository perfil de administrador (1:1 con users).
type AdminRepository interface {
	Create(ctx context.Context, a *entity.Admin) error
	GetByUserID(ctx context.Context, userID string) (*entity.Admin, error)
	Update(ctx context.Context, a *entity.Admin) error
	List(ctx context.Context) ([]*entity.Admin, error)
	Delete(ctx context.Context, userID string) error
}
