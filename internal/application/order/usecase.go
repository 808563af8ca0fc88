// Package order implementa el ciclo de vida de los pedidos: creación (checkout), cambios de
// estado del staff, autocancelación del cliente, borrado y consultas.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/notify"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/cart"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
	"github.com/jhoicas/snacks-api/pkg/clock"
)

// UseCase casos de uso de pedidos.
type UseCase struct {
	tx       TxRunner
	orders   repository.OrderRepository
	products repository.ProductRepository
	vendors  repository.VendorRepository
	notifier notify.Notifier
	clock    clock.Clock
	receipts ReceiptGenerator
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso. receipts puede ser nil (Receipt no disponible).
func NewUseCase(
	tx TxRunner,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	vendors repository.VendorRepository,
	notifier notify.Notifier,
	clk clock.Clock,
	receipts ReceiptGenerator,
	log zerolog.Logger,
) *UseCase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &UseCase{
		tx:       tx,
		orders:   orders,
		products: products,
		vendors:  vendors,
		notifier: notifier,
		clock:    clk,
		receipts: receipts,
		log:      log,
	}
}

// Create valida, cotiza y persiste un pedido nuevo en estado ACCEPTED.
func (uc *UseCase) Create(ctx context.Context, auth authz.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	lines, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	if (in.P2PVendorID != nil || in.NewVendor != nil) && !auth.IsStaff() {
		return nil, domain.ErrForbidden
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	found, err := uc.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("order: leer productos: %w", err)
	}
	priced := make([]pricing.Line, 0, len(lines))
	items := make([]entity.OrderProduct, 0, len(lines))
	for _, l := range lines {
		p, ok := found[l.ProductID]
		if !ok || p == nil {
			return nil, fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
		}
		priced = append(priced, pricing.Line{Product: *p, Quantity: l.Quantity})
		items = append(items, entity.OrderProduct{ID: uuid.New().String(), ProductID: p.ID, Quantity: l.Quantity, Product: p})
	}

	quote := pricing.Calculate(priced, auth.Role)
	if err := pricing.CheckMinimumOrder(quote, auth.Role); err != nil {
		return nil, err
	}

	var vendor *entity.Vendor
	if in.P2PVendorID != nil {
		vendor, err = uc.vendors.GetByID(ctx, *in.P2PVendorID)
		if err != nil {
			return nil, fmt.Errorf("order: leer vendor: %w", err)
		}
		if vendor == nil {
			return nil, fmt.Errorf("vendor %s: %w", *in.P2PVendorID, domain.ErrNotFound)
		}
	}

	now := uc.clock.Now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		Status:      entity.OrderStatusAccepted,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		OrderInfo:   strings.TrimSpace(in.OrderInfo),
		Address:     strings.TrimSpace(in.Address),
		OrderPerson: strings.TrimSpace(in.OrderPerson),
		UserID:      auth.UserID,
		Tier:        string(quote.Tier),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	order.Products = items

	err = uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, vendors repository.VendorRepository) error {
		if in.NewVendor != nil {
			vendor = &entity.Vendor{
				ID:          uuid.New().String(),
				Name:        strings.TrimSpace(in.NewVendor.Name),
				PhoneNumber: strings.TrimSpace(in.NewVendor.PhoneNumber),
				Address:     strings.TrimSpace(in.NewVendor.Address),
				CreatedBy:   auth.UserID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := vendors.Create(ctx, vendor); err != nil {
				return fmt.Errorf("crear vendor: %w", err)
			}
		}
		if vendor != nil {
			id := vendor.ID
			order.P2PVendorID = &id
		}
		num, err := orders.NextOrderNumber(ctx)
		if err != nil {
			return fmt.Errorf("número de pedido: %w", err)
		}
		order.OrderNumber = num
		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("crear pedido: %w", err)
		}
		return orders.Notify(ctx, repository.OrderEventCreated, order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	order.Vendor = vendor

	out := dto.NewOrderResponse(order)
	uc.notify(notify.TemplateOrderPlaced, order.UserID, out)
	uc.log.Info().Str("order_id", order.ID).Int64("order_number", order.OrderNumber).
		Str("tier", order.Tier).Msg("pedido creado")
	return out, nil
}

// Update aplica un PATCH de staff: estado y/o datos de entrega.
func (uc *UseCase) Update(ctx context.Context, auth authz.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	order, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	if in.Status != nil {
		if !entity.CanTransition(order.Status, *in.Status) {
			return nil, domain.NewRuleError(domain.ErrConflict, domain.CodeInvalidTransition,
				fmt.Sprintf("Cannot change order status from %s to %s", order.Status, *in.Status))
		}
		order.Status = *in.Status
	}
	if in.PhoneNumber != nil {
		order.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Address != nil {
		order.Address = strings.TrimSpace(*in.Address)
	}
	if in.OrderPerson != nil {
		order.OrderPerson = strings.TrimSpace(*in.OrderPerson)
	}
	if in.OrderInfo != nil {
		order.OrderInfo = strings.TrimSpace(*in.OrderInfo)
	}
	order.UpdatedAt = uc.clock.Now()

	if err := uc.save(ctx, order, prev); err != nil {
		return nil, err
	}
	out := dto.NewOrderResponse(order)
	if order.Status != prev {
		switch order.Status {
		case entity.OrderStatusDelivered:
			uc.notify(notify.TemplateOrderDelivered, order.UserID, out)
		case entity.OrderStatusCancelled:
			uc.notify(notify.TemplateOrderCancelled, order.UserID, out)
		}
	}
	return out, nil
}

// Cancel autocancelación del dueño del pedido dentro de la ventana de 10 minutos.
func (uc *UseCase) Cancel(ctx context.Context, auth authz.Context, id string) (*dto.OrderResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	order, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != auth.UserID {
		return nil, domain.ErrForbidden
	}
	now := uc.clock.Now()
	if err := order.CheckCustomerCancel(now); err != nil {
		return nil, err
	}
	prev := order.Status
	order.Status = entity.OrderStatusCancelled
	order.UpdatedAt = now
	if err := uc.save(ctx, order, prev); err != nil {
		return nil, err
	}
	out := dto.NewOrderResponse(order)
	uc.notify(notify.TemplateOrderCancelled, order.UserID, out)
	return out, nil
}

// Delete borra el pedido y sus líneas (ADMIN).
func (uc *UseCase) Delete(ctx context.Context, auth authz.Context, id string) error {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return err
	}
	err := uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.VendorRepository) error {
		if err := orders.Delete(ctx, id); err != nil {
			return err
		}
		return orders.Notify(ctx, repository.OrderEventDeleted, id)
	})
	if err != nil {
		return fmt.Errorf("order: borrar: %w", err)
	}
	return nil
}

// List pedidos visibles para el llamador, más recientes primero.
func (uc *UseCase) List(ctx context.Context, auth authz.Context) ([]dto.OrderResponse, error) {
	return uc.list(ctx, auth, "")
}

// Pending pedidos ACCEPTED visibles para el llamador (snapshot inicial del canal de eventos).
func (uc *UseCase) Pending(ctx context.Context, auth authz.Context) ([]dto.OrderResponse, error) {
	return uc.list(ctx, auth, entity.OrderStatusAccepted)
}

func (uc *UseCase) list(ctx context.Context, auth authz.Context, status string) ([]dto.OrderResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	filter := repository.OrderFilter{Status: status}
	if !auth.IsStaff() {
		filter.UserID = auth.UserID
	}
	orders, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("order: listar: %w", err)
	}
	return dto.NewOrderList(orders), nil
}

// Get un pedido con la misma visibilidad que List: el pedido ajeno se reporta como inexistente.
func (uc *UseCase) Get(ctx context.Context, auth authz.Context, id string) (*dto.OrderResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	order, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(auth, order) {
		return nil, domain.ErrNotFound
	}
	return dto.NewOrderResponse(order), nil
}

// Receipt recibo PDF del pedido.
func (uc *UseCase) Receipt(ctx context.Context, auth authz.Context, id string) ([]byte, int64, error) {
	if uc.receipts == nil {
		return nil, 0, fmt.Errorf("order: recibos no configurados")
	}
	out, err := uc.Get(ctx, auth, id)
	if err != nil {
		return nil, 0, err
	}
	pdf, err := uc.receipts.GenerateReceipt(ctx, out)
	if err != nil {
		return nil, 0, fmt.Errorf("order: generar recibo: %w", err)
	}
	return pdf, out.OrderNumber, nil
}

// Resolve lee un pedido para el canal de eventos (sin chequeo de rol; el filtrado por
// visibilidad lo hace el consumidor con Visible).
func (uc *UseCase) Resolve(ctx context.Context, id string) (*entity.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

// Visible indica si el pedido es visible para el llamador: staff ve todo, el resto solo lo propio.
func Visible(auth authz.Context, o *entity.Order) bool {
	if o == nil {
		return false
	}
	return auth.IsStaff() || o.UserID == auth.UserID
}

func (uc *UseCase) get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order: leer: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// save escribe el pedido solo si su estado sigue siendo prev; si otro cambio se adelantó
// devuelve domain.ErrStaleOrder y no notifica.
func (uc *UseCase) save(ctx context.Context, order *entity.Order, prev string) error {
	err := uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.VendorRepository) error {
		if err := orders.Update(ctx, order, prev); err != nil {
			return err
		}
		return orders.Notify(ctx, repository.OrderEventUpdated, order.ID)
	})
	if err != nil {
		return fmt.Errorf("order: actualizar: %w", err)
	}
	return nil
}

func (uc *UseCase) notify(template, userID string, out *dto.OrderResponse) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Enqueue(notify.Message{Template: template, UserID: userID, Order: out})
}

// validateCreate verifica los campos y fusiona líneas repetidas del mismo producto.
func validateCreate(in dto.CreateOrderRequest) ([]dto.OrderLineRequest, error) {
	required := []struct{ field, value string }{
		{"phoneNumber", in.PhoneNumber},
		{"orderInfo", in.OrderInfo},
		{"address", in.Address},
		{"orderPerson", in.OrderPerson},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, domain.NewValidationError(r.field, r.field+" is required")
		}
	}
	if len(in.Products) == 0 {
		return nil, domain.NewValidationError("products", "at least one product is required")
	}
	merged := make([]dto.OrderLineRequest, 0, len(in.Products))
	index := make(map[string]int, len(in.Products))
	for i, l := range in.Products {
		if strings.TrimSpace(l.ProductID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("products[%d].productId", i), "productId is required")
		}
		if l.Quantity < cart.MinQuantity || l.Quantity > cart.MaxQuantity {
			return nil, domain.NewValidationError(fmt.Sprintf("products[%d].quantity", i),
				fmt.Sprintf("quantity must be between %d and %d", cart.MinQuantity, cart.MaxQuantity))
		}
		if j, ok := index[l.ProductID]; ok {
			merged[j].Quantity += l.Quantity
			if merged[j].Quantity > cart.MaxQuantity {
				return nil, domain.NewValidationError(fmt.Sprintf("products[%d].quantity", i),
					fmt.Sprintf("quantity must be between %d and %d", cart.MinQuantity, cart.MaxQuantity))
			}
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	if in.P2PVendorID != nil && in.NewVendor != nil {
		return nil, domain.NewValidationError("p2pVendorId", "use either p2pVendorId or newVendor")
	}
	if in.P2PVendorID != nil && strings.TrimSpace(*in.P2PVendorID) == "" {
		return nil, domain.NewValidationError("p2pVendorId", "p2pVendorId must not be empty")
	}
	if in.NewVendor != nil {
		if err := ValidateVendor(*in.NewVendor); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// ValidateVendor nombre y teléfono obligatorios; dirección opcional.
func ValidateVendor(v dto.VendorRequest) error {
	if strings.TrimSpace(v.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(v.PhoneNumber) == "" {
		return domain.NewValidationError("phoneNumber", "phoneNumber is required")
	}
	return nil
}

func validateUpdate(in dto.UpdateOrderRequest) error {
	if in.Status == nil && in.PhoneNumber == nil && in.Address == nil && in.OrderPerson == nil && in.OrderInfo == nil {
		return domain.NewValidationError("", "nothing to update")
	}
	if in.Status != nil && !entity.IsValidOrderStatus(*in.Status) {
		return domain.NewValidationError("status", "status must be one of ACCEPTED, IN_TRANSIT, DELIVERED, CANCELLED")
	}
	optional := []struct {
		field string
		value *string
	}{
		{"phoneNumber", in.PhoneNumber},
		{"address", in.Address},
		{"orderPerson", in.OrderPerson},
		{"orderInfo", in.OrderInfo},
	}
	for _, o := range optional {
		if o.value != nil && strings.TrimSpace(*o.value) == "" {
			return domain.NewValidationError(o.field, o.field+" must not be empty")
		}
	}
	return nil
}
