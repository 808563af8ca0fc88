package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

func TestAuthorize(t *testing.T) {
	user := authz.Context{UserID: "u1", Role: entity.RoleUser}
	emp := authz.Context{UserID: "e1", Role: entity.RoleEmployee}
	admin := authz.Context{UserID: "a1", Role: entity.RoleAdmin}

	tests := []struct {
		name     string
		ctx      authz.Context
		required []string
		want     error
	}{
		{"sin sesión", authz.Context{}, nil, domain.ErrUnauthorized},
		{"sin rol en token", authz.Context{UserID: "x"}, nil, domain.ErrUnauthorized},
		{"cualquier rol autenticado", user, nil, nil},
		{"usuario en ruta staff", user, authz.Staff, domain.ErrForbidden},
		{"empleado en ruta staff", emp, authz.Staff, nil},
		{"empleado en ruta admin", emp, []string{entity.RoleAdmin}, domain.ErrForbidden},
		{"admin en ruta admin", admin, []string{entity.RoleAdmin}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(tt.ctx, tt.required...)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestContext_IsStaff(t *testing.T) {
	assert.False(t, authz.Context{UserID: "u", Role: entity.RoleUser}.IsStaff())
	assert.True(t, authz.Context{UserID: "e", Role: entity.RoleEmployee}.IsStaff())
	assert.True(t, authz.Context{UserID: "a", Role: entity.RoleAdmin}.IsStaff())
}
