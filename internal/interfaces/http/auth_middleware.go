package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/pkg/jwt"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// TokenQueryParam parámetro alternativo al header para clientes EventSource, que no envían headers.
const TokenQueryParam = "token"

// AuthMiddleware valida el Bearer Token JWT y carga UserID y Role en c.Locals.
// Sin token o con token inválido responde 401.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return authMiddleware(jwtSecret, true, false)
}

// StreamAuthMiddleware como AuthMiddleware pero acepta también ?token=.
func StreamAuthMiddleware(jwtSecret string) fiber.Handler {
	return authMiddleware(jwtSecret, true, true)
}

// OptionalAuth carga la identidad si hay un token válido y sigue sin ella si no lo hay
// (catálogo público: el precio mostrado depende del rol).
func OptionalAuth(jwtSecret string) fiber.Handler {
	return authMiddleware(jwtSecret, false, false)
}

func authMiddleware(jwtSecret string, required, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c, allowQuery)
		if err != nil {
			if !required {
				return c.Next()
			}
			return err
		}
		userID, role, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			if !required {
				return c.Next()
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx, allowQuery bool) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if allowQuery {
			if t := strings.TrimSpace(c.Query(TokenQueryParam)); t != "" {
				return t, nil
			}
		}
		return "", fiber.NewError(fiber.StatusUnauthorized, "authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fiber.NewError(fiber.StatusUnauthorized, "format: Bearer <token>")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// RequireRole corta con 403 si el rol del token no es uno de los indicados.
// Debe ir después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authz.Authorize(GetAuth(c), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetAuth identidad del llamador para los casos de uso; valor cero si no hay sesión.
func GetAuth(c *fiber.Ctx) authz.Context {
	return authz.Context{UserID: GetUserID(c), Role: GetRole(c)}
}
