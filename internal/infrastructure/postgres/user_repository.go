package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
	_ repository.AdminRepository    = (*AdminRepo)(nil)
)

const userColumns = `id, email, password_hash, name, role, address, city, phone_number, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.Address, &u.City, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario; el email es único sin distinguir mayúsculas.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, address, city, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.Address, user.City, user.PhoneNumber, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, name = $4, role = $5, address = $6,
		       city = $7, phone_number = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.Address, user.City, user.PhoneNumber, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete elimina un usuario por ID; ErrConflict si tiene pedidos.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EmployeeRepo perfiles de empleado.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

const employeeSelect = `
	SELECT e.user_id, e.department, e.position, e.salary, e.created_at, e.updated_at,
	       u.id, u.email, u.password_hash, u.name, u.role, u.address, u.city, u.phone_number, u.created_at, u.updated_at
	FROM employees e JOIN users u ON u.id = e.user_id`

func scanEmployee(row pgx.Row) (*entity.Employee, error) {
	var (
		e entity.Employee
		u entity.User
	)
	err := row.Scan(&e.UserID, &e.Department, &e.Position, &e.Salary, &e.CreatedAt, &e.UpdatedAt,
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Address, &u.City, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.User = &u
	return &e, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO employees (user_id, department, position, salary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.Department, e.Position, e.Salary, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID string) (*entity.Employee, error) {
	e, err := scanEmployee(r.q.QueryRow(ctx, employeeSelect+` WHERE e.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE employees SET department = $2, position = $3, salary = $4, updated_at = $5 WHERE user_id = $1`,
		e.UserID, e.Department, e.Position, e.Salary, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepo) List(ctx context.Context) ([]*entity.Employee, error) {
	rows, err := r.q.Query(ctx, employeeSelect+` ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()
	list := []*entity.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EmployeeRepo) Delete(ctx context.Context, userID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM employees WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdminRepo perfiles de administrador.
type AdminRepo struct {
	q Querier
}

// NewAdminRepository construye el adaptador.
func NewAdminRepository(q Querier) *AdminRepo {
	return &AdminRepo{q: q}
}

const adminSelect = `
	SELECT a.user_id, a.level, a.created_at, a.updated_at,
	       u.id, u.email, u.password_hash, u.name, u.role, u.address, u.city, u.phone_number, u.created_at, u.updated_at
	FROM admins a JOIN users u ON u.id = a.user_id`

func scanAdmin(row pgx.Row) (*entity.Admin, error) {
	var (
		a entity.Admin
		u entity.User
	)
	err := row.Scan(&a.UserID, &a.Level, &a.CreatedAt, &a.UpdatedAt,
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Address, &u.City, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.User = &u
	return &a, nil
}

func (r *AdminRepo) Create(ctx context.Context, a *entity.Admin) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO admins (user_id, level, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		a.UserID, a.Level, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepo) GetByUserID(ctx context.Context, userID string) (*entity.Admin, error) {
	a, err := scanAdmin(r.q.QueryRow(ctx, adminSelect+` WHERE a.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}

func (r *AdminRepo) Update(ctx context.Context, a *entity.Admin) error {
	cmd, err := r.q.Exec(ctx, `UPDATE admins SET level = $2, updated_at = $3 WHERE user_id = $1`,
		a.UserID, a.Level, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdminRepo) List(ctx context.Context) ([]*entity.Admin, error) {
	rows, err := r.q.Query(ctx, adminSelect+` ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	list := []*entity.Admin{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *AdminRepo) Delete(ctx context.Context, userID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
