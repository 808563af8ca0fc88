package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
	"github.com/jhoicas/snacks-api/pkg/jwt"
)

// MinPasswordLength largo mínimo de contraseña.
const MinPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y perfil propio.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea una cuenta de cliente (rol USER). Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := NormalizeEmail(in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if in.PhoneNumber != "" {
		if err := ValidatePhone(in.PhoneNumber); err != nil {
			return nil, err
		}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         entity.RoleUser,
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *dto.NewUserResponse(user),
	}, nil
}

// Me devuelve la cuenta del llamador.
func (uc *AuthUseCase) Me(ctx context.Context, auth authz.Context) (*dto.UserResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return dto.NewUserResponse(user), nil
}

// UpdateProfile aplica el formulario de cuenta con errores de validación por campo.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, auth authz.Context, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}
	if in.City != nil {
		user.City = strings.TrimSpace(*in.City)
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func validateProfile(in dto.UpdateProfileRequest) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return domain.NewValidationError("name", "name must not be empty")
	}
	if in.Address != nil && len(strings.TrimSpace(*in.Address)) < 5 {
		return domain.NewValidationError("address", "address must be at least 5 characters")
	}
	if in.City != nil && strings.TrimSpace(*in.City) == "" {
		return domain.NewValidationError("city", "city must not be empty")
	}
	if in.PhoneNumber != nil {
		if err := ValidatePhone(*in.PhoneNumber); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeEmail recorta y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail comprobación mínima de forma: algo@dominio.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return domain.NewValidationError("email", "email is not valid")
	}
	return nil
}

// ValidatePhone acepta dígitos, espacios, '+' y '-', con 7 a 15 dígitos.
func ValidatePhone(phone string) error {
	digits := 0
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ':
		default:
			return domain.NewValidationError("phoneNumber", "phoneNumber may only contain digits, spaces, '+' and '-'")
		}
	}
	if digits < 7 || digits > 15 {
		return domain.NewValidationError("phoneNumber", "phoneNumber must have between 7 and 15 digits")
	}
	return nil
}

// HashPassword valida el largo mínimo y devuelve el hash bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
