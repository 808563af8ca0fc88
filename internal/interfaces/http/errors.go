package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
)

// Códigos de error HTTP genéricos.
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeValidation   = "VALIDATION"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeDuplicate    = "DUPLICATE"
	CodeEmailExists  = "EMAIL_EXISTS"
	CodeInternal     = "INTERNAL"
)

// errorStatus traduce un error de dominio a status HTTP y cuerpo.
func errorStatus(err error) (int, dto.ErrorResponse) {
	var (
		verr  *domain.ValidationError
		rerr  *domain.RuleError
		ferr  *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Error: verr.Message, Code: CodeValidation, Field: verr.Field}
	case errors.As(err, &rerr):
		status := fiber.StatusBadRequest
		if errors.Is(rerr.Kind, domain.ErrConflict) {
			status = fiber.StatusConflict
		}
		return status, dto.ErrorResponse{Error: rerr.Message, Code: rerr.Code}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required", Code: CodeUnauthorized}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Error: "you are not allowed to perform this action", Code: CodeForbidden}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Error: "not found", Code: CodeNotFound}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Error: "email is already registered", Code: CodeEmailExists}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Error: "resource already exists", Code: CodeDuplicate}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Error: "resource is in use", Code: CodeConflict}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Error: "invalid input", Code: CodeValidation}
	case errors.As(err, &ferr):
		return ferr.Code, dto.ErrorResponse{Error: ferr.Message, Code: statusCode(ferr.Code)}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Code: CodeInternal}
}

func statusCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeInvalidBody
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusRequestEntityTooLarge:
		return CodeValidation
	}
	if status >= 500 {
		return CodeInternal
	}
	return CodeConflict
}

// ErrorHandler handler de errores de la app: todo error devuelto por un handler sale como
// {"error", "code", "field"}. Los 5xx se registran con la ruta.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := errorStatus(err)
		if status >= 500 {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("http: error interno")
		}
		return c.Status(status).JSON(body)
	}
}

// badBody error para cuerpos que no se pueden decodificar.
func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
}
