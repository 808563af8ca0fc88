package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/auth"
	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// PeopleUseCase alta y gestión de empleados y administradores (ADMIN).
// Dar de baja quita el perfil y devuelve la cuenta al rol USER: sus pedidos se conservan.
type PeopleUseCase struct {
	users     repository.UserRepository
	employees repository.EmployeeRepository
	admins    repository.AdminRepository
	log       zerolog.Logger
}

// NewPeopleUseCase construye el caso de uso.
func NewPeopleUseCase(users repository.UserRepository, employees repository.EmployeeRepository, admins repository.AdminRepository, log zerolog.Logger) *PeopleUseCase {
	return &PeopleUseCase{users: users, employees: employees, admins: admins, log: log}
}

// CreateEmployee crea la cuenta con rol EMPLOYEE y su perfil.
func (uc *PeopleUseCase) CreateEmployee(ctx context.Context, a authz.Context, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Salary.IsNegative() {
		return nil, domain.NewValidationError("salary", "salary must not be negative")
	}
	user, err := uc.newAccount(ctx, in.Email, in.Password, in.Name, in.PhoneNumber, entity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e := &entity.Employee{
		UserID:     user.ID,
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Salary:     in.Salary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.employees.Create(ctx, e); err != nil {
		uc.rollbackAccount(ctx, user.ID)
		return nil, err
	}
	e.User = user
	return toEmployeeResponse(e), nil
}

// ListEmployees todos los empleados.
func (uc *PeopleUseCase) ListEmployees(ctx context.Context, a authz.Context) ([]dto.EmployeeResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := uc.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, *toEmployeeResponse(e))
	}
	return out, nil
}

// UpdateEmployee aplica solo los campos presentes.
func (uc *PeopleUseCase) UpdateEmployee(ctx context.Context, a authz.Context, userID string, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Salary != nil && in.Salary.IsNegative() {
		return nil, domain.NewValidationError("salary", "salary must not be negative")
	}
	e, err := uc.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if in.Department != nil {
		e.Department = strings.TrimSpace(*in.Department)
	}
	if in.Position != nil {
		e.Position = strings.TrimSpace(*in.Position)
	}
	if in.Salary != nil {
		e.Salary = *in.Salary
	}
	e.UpdatedAt = time.Now()
	if err := uc.employees.Update(ctx, e); err != nil {
		return nil, err
	}
	if in.Name != nil || in.PhoneNumber != nil {
		user, err := uc.updateAccount(ctx, userID, in.Name, in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		e.User = user
	}
	return toEmployeeResponse(e), nil
}

// DeleteEmployee quita el perfil y devuelve la cuenta al rol USER.
func (uc *PeopleUseCase) DeleteEmployee(ctx context.Context, a authz.Context, userID string) error {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return err
	}
	if err := uc.employees.Delete(ctx, userID); err != nil {
		return err
	}
	return uc.demote(ctx, userID)
}

// CreateAdmin crea la cuenta con rol ADMIN y su perfil.
func (uc *PeopleUseCase) CreateAdmin(ctx context.Context, a authz.Context, in dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Level < 0 {
		return nil, domain.NewValidationError("level", "level must not be negative")
	}
	user, err := uc.newAccount(ctx, in.Email, in.Password, in.Name, "", entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	adm := &entity.Admin{UserID: user.ID, Level: in.Level, CreatedAt: now, UpdatedAt: now}
	if err := uc.admins.Create(ctx, adm); err != nil {
		uc.rollbackAccount(ctx, user.ID)
		return nil, err
	}
	adm.User = user
	return toAdminResponse(adm), nil
}

// ListAdmins todos los administradores.
func (uc *PeopleUseCase) ListAdmins(ctx context.Context, a authz.Context) ([]dto.AdminResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := uc.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdminResponse, 0, len(list))
	for _, adm := range list {
		out = append(out, *toAdminResponse(adm))
	}
	return out, nil
}

// UpdateAdmin aplica solo los campos presentes.
func (uc *PeopleUseCase) UpdateAdmin(ctx context.Context, a authz.Context, userID string, in dto.UpdateAdminRequest) (*dto.AdminResponse, error) {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Level != nil && *in.Level < 0 {
		return nil, domain.NewValidationError("level", "level must not be negative")
	}
	adm, err := uc.admins.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if adm == nil {
		return nil, domain.ErrNotFound
	}
	if in.Level != nil {
		adm.Level = *in.Level
		adm.UpdatedAt = time.Now()
		if err := uc.admins.Update(ctx, adm); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		user, err := uc.updateAccount(ctx, userID, in.Name, nil)
		if err != nil {
			return nil, err
		}
		adm.User = user
	}
	return toAdminResponse(adm), nil
}

// DeleteAdmin quita el perfil y devuelve la cuenta al rol USER. Un admin no puede darse de baja a sí mismo.
func (uc *PeopleUseCase) DeleteAdmin(ctx context.Context, a authz.Context, userID string) error {
	if err := authz.Authorize(a, entity.RoleAdmin); err != nil {
		return err
	}
	if userID == a.UserID {
		return domain.NewRuleError(domain.ErrConflict, domain.CodeSelfDelete, "You cannot remove your own admin access")
	}
	if err := uc.admins.Delete(ctx, userID); err != nil {
		return err
	}
	return uc.demote(ctx, userID)
}

func (uc *PeopleUseCase) newAccount(ctx context.Context, email, password, name, phone, role string) (*entity.User, error) {
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if phone != "" {
		if err := auth.ValidatePhone(phone); err != nil {
			return nil, err
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PhoneNumber:  strings.TrimSpace(phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *PeopleUseCase) updateAccount(ctx context.Context, userID string, name, phone *string) (*entity.User, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, domain.NewValidationError("name", "name must not be empty")
	}
	if phone != nil {
		if err := auth.ValidatePhone(*phone); err != nil {
			return nil, err
		}
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if phone != nil {
		user.PhoneNumber = strings.TrimSpace(*phone)
	}
	user.UpdatedAt = time.Now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *PeopleUseCase) demote(ctx context.Context, userID string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	user.Role = entity.RoleUser
	user.UpdatedAt = time.Now()
	if err := uc.users.Update(ctx, user); err != nil {
		return fmt.Errorf("people: degradar cuenta: %w", err)
	}
	return nil
}

func (uc *PeopleUseCase) rollbackAccount(ctx context.Context, userID string) {
	if err := uc.users.Delete(ctx, userID); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("people: no se pudo revertir la cuenta creada")
	}
}

func toEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	out := &dto.EmployeeResponse{
		UserID:     e.UserID,
		Department: e.Department,
		Position:   e.Position,
		Salary:     e.Salary,
		CreatedAt:  e.CreatedAt,
	}
	if e.User != nil {
		out.Email = e.User.Email
		out.Name = e.User.Name
	}
	return out
}

func toAdminResponse(a *entity.Admin) *dto.AdminResponse {
	out := &dto.AdminResponse{UserID: a.UserID, Level: a.Level, CreatedAt: a.CreatedAt}
	if a.User != nil {
		out.Email = a.User.Email
		out.Name = a.User.Name
	}
	return out
}
