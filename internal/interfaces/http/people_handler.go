package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/usecase"
)

// PeopleHandler empleados y administradores (ADMIN).
type PeopleHandler struct {
	uc *usecase.PeopleUseCase
}

func NewPeopleHandler(uc *usecase.PeopleUseCase) *PeopleHandler {
	return &PeopleHandler{uc: uc}
}

// CreateEmployee godoc
// @Summary      Alta de empleado
// @Tags         people
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEmployeeRequest  true  "cuenta y perfil"
// @Success      201   {object}  dto.EmployeeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/employees [post]
func (h *PeopleHandler) CreateEmployee(c *fiber.Ctx) error {
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.CreateEmployee(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListEmployees godoc
// @Summary      Listar empleados
// @Tags         people
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EmployeeResponse
// @Router       /api/employees [get]
func (h *PeopleHandler) ListEmployees(c *fiber.Ctx) error {
	out, err := h.uc.ListEmployees(c.UserContext(), GetAuth(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateEmployee godoc
// @Summary      Actualizar empleado
// @Tags         people
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "user id"
// @Param        body  body  dto.UpdateEmployeeRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.EmployeeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [patch]
func (h *PeopleHandler) UpdateEmployee(c *fiber.Ctx) error {
	var in dto.UpdateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.UpdateEmployee(c.UserContext(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteEmployee godoc
// @Summary      Baja de empleado
// @Description  Borra el perfil y deja la cuenta como USER.
// @Tags         people
// @Security     Bearer
// @Param        id   path  string  true  "user id"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [delete]
func (h *PeopleHandler) DeleteEmployee(c *fiber.Ctx) error {
	if err := h.uc.DeleteEmployee(c.UserContext(), GetAuth(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateAdmin godoc
// @Summary      Alta de administrador
// @Tags         people
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdminRequest  true  "cuenta y nivel"
// @Success      201   {object}  dto.AdminResponse
// @Router       /api/admins [post]
func (h *PeopleHandler) CreateAdmin(c *fiber.Ctx) error {
	var in dto.CreateAdminRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.CreateAdmin(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAdmins godoc
// @Summary      Listar administradores
// @Tags         people
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AdminResponse
// @Router       /api/admins [get]
func (h *PeopleHandler) ListAdmins(c *fiber.Ctx) error {
	out, err := h.uc.ListAdmins(c.UserContext(), GetAuth(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateAdmin godoc
// @Summary      Actualizar administrador
// @Tags         people
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "user id"
// @Param        body  body  dto.UpdateAdminRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.AdminResponse
// @Router       /api/admins/{id} [patch]
func (h *PeopleHandler) UpdateAdmin(c *fiber.Ctx) error {
	var in dto.UpdateAdminRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.UpdateAdmin(c.UserContext(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteAdmin godoc
// @Summary      Baja de administrador
// @Description  Un administrador no puede darse de baja a sí mismo.
// @Tags         people
// @Security     Bearer
// @Param        id   path  string  true  "user id"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admins/{id} [delete]
func (h *PeopleHandler) DeleteAdmin(c *fiber.Ctx) error {
	if err := h.uc.DeleteAdmin(c.UserContext(), GetAuth(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
