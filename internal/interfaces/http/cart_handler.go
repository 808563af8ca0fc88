package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/application/cart"
	"github.com/jhoicas/snacks-api/internal/application/dto"
)

// CartHandler carrito del usuario autenticado (un carrito por vendor para el staff).
type CartHandler struct {
	uc *cart.UseCase
}

func NewCartHandler(uc *cart.UseCase) *CartHandler {
	return &CartHandler{uc: uc}
}

// Get godoc
// @Summary      Carrito activo cotizado con precios vigentes
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetAuth(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto
// @Description  quantity debe ser al menos 1; se suma si el producto ya está en el carrito (máx. 5000). notices incluye BULK_UNLOCKED al cruzar el umbral.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "producto y cantidad"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.AddItem(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Fijar cantidad
// @Description  Una cantidad menor a 1 quita la línea.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        body       body  dto.UpdateCartItemRequest  true  "cantidad"
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart/items/{productId} [patch]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.UpdateQuantity(c.UserContext(), GetAuth(c), c.Params("productId"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar producto
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.uc.RemoveItem(c.UserContext(), GetAuth(c), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Vaciar el carrito activo
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	out, err := h.uc.Clear(c.UserContext(), GetAuth(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SelectVendor godoc
// @Summary      Seleccionar vendor activo (staff)
// @Description  vendorId null vuelve al carrito propio.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectVendorRequest  true  "vendorId o null"
// @Success      200   {object}  dto.CartResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/vendor [put]
func (h *CartHandler) SelectVendor(c *fiber.Ctx) error {
	var in dto.SelectVendorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.SelectVendor(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CreateVendor godoc
// @Summary      Crear vendor y seleccionarlo (staff)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VendorRequest  true  "nombre y teléfono obligatorios"
// @Success      201   {object}  dto.CartVendorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cart/vendors [post]
func (h *CartHandler) CreateVendor(c *fiber.Ctx) error {
	var in dto.VendorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.CreateVendor(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Import godoc
// @Summary      Importar snapshot del cliente
// @Description  Acepta la forma actual {vendorCarts, activeVendorId} y las formas antiguas.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportCartRequest  true  "snapshot"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cart/snapshot [put]
func (h *CartHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportCartRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.Import(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Checkout godoc
// @Summary      Confirmar el carrito activo como pedido
// @Description  Tras crear el pedido vacía todos los carritos y quita el vendor activo. 409 VENDOR_REQUIRED si un empleado no tiene vendor seleccionado; 400 MINIMUM_ORDER bajo el mínimo.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "datos de entrega"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	out, err := h.uc.Checkout(c.UserContext(), GetAuth(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
