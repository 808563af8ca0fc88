package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/auth"
	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/testutil"
	"github.com/jhoicas/snacks-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() (*auth.AuthUseCase, *testutil.Store) {
	store := testutil.NewStore()
	return auth.NewAuthUseCase(store.UserRepo(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "snacks-api"}), store
}

func TestRegisterYLogin(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Asha@Example.com ", Password: "s3cret-pass", Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ASHA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleUser, role)
}

func TestRegister_EmailRepetido(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "A@B.co", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_Validaciones(t *testing.T) {
	uc, _ := newAuth()
	tests := []struct {
		name  string
		in    dto.RegisterRequest
		field string
	}{
		{"email inválido", dto.RegisterRequest{Email: "nope", Password: "12345678"}, "email"},
		{"password corto", dto.RegisterRequest{Email: "a@b.co", Password: "123"}, "password"},
		{"teléfono con letras", dto.RegisterRequest{Email: "a@b.co", Password: "12345678", PhoneNumber: "call me"}, "phoneNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RegisterUser(context.Background(), tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ghost@b.co", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678"})
	require.NoError(t, err)
	me := authz.Context{UserID: u.ID, Role: u.Role}

	city := "Lahore"
	phone := "+92 300 1234567"
	out, err := uc.UpdateProfile(ctx, me, dto.UpdateProfileRequest{City: &city, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Lahore", out.City)
	assert.Equal(t, phone, out.PhoneNumber)

	short := "x"
	_, err = uc.UpdateProfile(ctx, me, dto.UpdateProfileRequest{Address: &short})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "address", ve.Field)

	got, err := uc.Me(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "Lahore", got.City)

	_, err = uc.Me(ctx, authz.Context{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
