// Package cart expone el almacén de carritos del dominio como casos de uso por usuario:
// el estado vive en un CartStateRepository (Redis) y cada petición lo carga, muta y guarda.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	domaincart "github.com/jhoicas/snacks-api/internal/domain/cart"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// OrderPlacer crea el pedido a partir del carrito activo.
type OrderPlacer interface {
	Create(ctx context.Context, auth authz.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error)
}

// VendorDirectory consulta y alta de vendors P2P.
type VendorDirectory interface {
	Get(ctx context.Context, auth authz.Context, id string) (*dto.VendorResponse, error)
	Create(ctx context.Context, auth authz.Context, in dto.VendorRequest) (*dto.VendorResponse, error)
}

// UseCase carrito del usuario autenticado.
type UseCase struct {
	carts    repository.CartStateRepository
	products repository.ProductRepository
	vendors  VendorDirectory
	orders   OrderPlacer
	log      zerolog.Logger

	// un carrito es mutado por una sola petición a la vez
	locks sync.Map // userID → *sync.Mutex
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	carts repository.CartStateRepository,
	products repository.ProductRepository,
	vendors VendorDirectory,
	orders OrderPlacer,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{carts: carts, products: products, vendors: vendors, orders: orders, log: log}
}

// Get devuelve el carrito activo con los productos releídos del catálogo (precios vivos).
func (uc *UseCase) Get(ctx context.Context, auth authz.Context) (*dto.CartResponse, error) {
	return uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		return uc.refresh(ctx, s)
	})
}

// AddItem agrega un producto del catálogo al carrito activo.
func (uc *UseCase) AddItem(ctx context.Context, auth authz.Context, in dto.AddCartItemRequest) (*dto.CartResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.NewValidationError("productId", "productId is required")
	}
	if in.Quantity < domaincart.MinQuantity {
		return nil, domain.NewValidationError("quantity", "quantity must be at least 1")
	}
	p, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("cart: leer producto: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}
	return uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		s.AddItem(*p, in.Quantity)
		return nil
	})
}

// UpdateQuantity fija la cantidad de una línea; menor a 1 la elimina.
func (uc *UseCase) UpdateQuantity(ctx context.Context, auth authz.Context, productID string, in dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	return uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		if !contains(s.ActiveItems(), productID) {
			return fmt.Errorf("producto %s en el carrito: %w", productID, domain.ErrNotFound)
		}
		s.UpdateQuantity(productID, in.Quantity)
		return nil
	})
}

// RemoveItem quita la línea del carrito activo. Idempotente.
func (uc *UseCase) RemoveItem(ctx context.Context, auth authz.Context, productID string) (*dto.CartResponse, error) {
	return uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		s.RemoveItem(productID)
		return nil
	})
}

// SelectVendor cambia al carrito del vendor indicado; nil vuelve al carrito propio.
func (uc *UseCase) SelectVendor(ctx context.Context, auth authz.Context, in dto.SelectVendorRequest) (*dto.CartResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	var id *string
	if in.VendorID != nil && strings.TrimSpace(*in.VendorID) != "" {
		v, err := uc.vendors.Get(ctx, auth, *in.VendorID)
		if err != nil {
			return nil, err
		}
		id = &v.ID
	}
	return uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		s.SetActiveVendorID(id)
		return nil
	})
}

// CreateVendor da de alta el vendor, lo selecciona y cambia al carrito de ese vendor.
func (uc *UseCase) CreateVendor(ctx context.Context, auth authz.Context, in dto.VendorRequest) (*dto.CartVendorResponse, error) {
	if err := authz.Authorize(auth, authz.Staff...); err != nil {
		return nil, err
	}
	v, err := uc.vendors.Create(ctx, auth, in)
	if err != nil {
		return nil, err
	}
	id := v.ID
	c, err := uc.mutate(ctx, auth, func(s *domaincart.Store) error {
		s.SetActiveVendorID(&id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.CartVendorResponse{Vendor: *v, Cart: *c}, nil
}

// Clear vacía todos los carritos del usuario.
func (uc *UseCase) Clear(ctx context.Context, auth authz.Context) (*dto.CartResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	unlock := uc.lock(auth.UserID)
	defer unlock()
	if err := uc.carts.Delete(ctx, auth.UserID); err != nil {
		return nil, fmt.Errorf("cart: borrar: %w", err)
	}
	return toResponse(domaincart.New(auth.Role), nil), nil
}

// Import reemplaza el carrito con un snapshot del cliente (forma actual o legacy).
func (uc *UseCase) Import(ctx context.Context, auth authz.Context, in dto.ImportCartRequest) (*dto.CartResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	snap, err := domaincart.ParseSnapshot(in.Snapshot)
	if err != nil {
		return nil, domain.NewValidationError("snapshot", "snapshot is not a valid cart")
	}
	if !auth.IsStaff() {
		snap.ActiveVendorID = nil
	}
	unlock := uc.lock(auth.UserID)
	defer unlock()

	s := domaincart.FromSnapshot(snap, auth.Role)
	if err := uc.refresh(ctx, s); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, auth.UserID, s); err != nil {
		return nil, err
	}
	return toResponse(s, s.DrainNotices()), nil
}

// Checkout convierte el carrito activo en pedido y luego reinicia el carrito completo
// (un solo bucket default, sin vendor activo).
// Un EMPLOYEE debe tener un vendor seleccionado.
func (uc *UseCase) Checkout(ctx context.Context, auth authz.Context, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	unlock := uc.lock(auth.UserID)
	defer unlock()

	s, err := uc.load(ctx, auth)
	if err != nil {
		return nil, err
	}
	items := s.ActiveItems()
	if len(items) == 0 {
		return nil, domain.NewValidationError("products", "cart is empty")
	}
	vendorID := s.ActiveVendorID()
	if auth.Role == entity.RoleEmployee && vendorID == nil {
		return nil, domain.NewRuleError(domain.ErrConflict, domain.CodeVendorRequired,
			"Select or create a vendor before placing the order")
	}

	req := dto.CreateOrderRequest{
		PhoneNumber: in.PhoneNumber,
		OrderInfo:   in.OrderInfo,
		Address:     in.Address,
		OrderPerson: in.OrderPerson,
		Products:    make([]dto.OrderLineRequest, 0, len(items)),
	}
	if strings.TrimSpace(req.OrderInfo) == "" {
		req.OrderInfo = summarize(items)
	}
	for _, it := range items {
		req.Products = append(req.Products, dto.OrderLineRequest{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	if auth.IsStaff() {
		req.P2PVendorID = vendorID
	}

	out, err := uc.orders.Create(ctx, auth, req)
	if err != nil {
		return nil, err
	}
	s.ClearCart()
	if err := uc.save(ctx, auth.UserID, s); err != nil {
		// el pedido ya existe; un carrito sin vaciar no lo invalida
		uc.log.Error().Err(err).Str("order_id", out.ID).Msg("cart: no se pudo vaciar tras el checkout")
	}
	return out, nil
}

// mutate carga el carrito, aplica fn, lo guarda y devuelve la respuesta con las notificaciones.
func (uc *UseCase) mutate(ctx context.Context, auth authz.Context, fn func(s *domaincart.Store) error) (*dto.CartResponse, error) {
	if err := authz.Authorize(auth); err != nil {
		return nil, err
	}
	unlock := uc.lock(auth.UserID)
	defer unlock()

	s, err := uc.load(ctx, auth)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, auth.UserID, s); err != nil {
		return nil, err
	}
	return toResponse(s, s.DrainNotices()), nil
}

func (uc *UseCase) load(ctx context.Context, auth authz.Context) (*domaincart.Store, error) {
	raw, err := uc.carts.Load(ctx, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("cart: cargar: %w", err)
	}
	if raw == nil {
		return domaincart.New(auth.Role), nil
	}
	snap, err := domaincart.ParseSnapshot(raw)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", auth.UserID).Msg("cart: snapshot ilegible, se descarta")
		return domaincart.New(auth.Role), nil
	}
	if !auth.IsStaff() {
		snap.ActiveVendorID = nil
	}
	return domaincart.FromSnapshot(snap, auth.Role), nil
}

func (uc *UseCase) save(ctx context.Context, userID string, s *domaincart.Store) error {
	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("cart: serializar: %w", err)
	}
	if err := uc.carts.Save(ctx, userID, raw); err != nil {
		return fmt.Errorf("cart: guardar: %w", err)
	}
	return nil
}

// refresh reemplaza los productos de todas las líneas por la fila vigente del catálogo.
func (uc *UseCase) refresh(ctx context.Context, s *domaincart.Store) error {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, key := range s.BucketKeys() {
		for _, it := range s.Items(key) {
			if _, ok := seen[it.Product.ID]; ok {
				continue
			}
			seen[it.Product.ID] = struct{}{}
			ids = append(ids, it.Product.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := uc.products.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("cart: refrescar productos: %w", err)
	}
	for _, p := range found {
		s.ReplaceProduct(*p)
	}
	return nil
}

func (uc *UseCase) lock(userID string) func() {
	m, _ := uc.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func contains(items []domaincart.Item, productID string) bool {
	for _, it := range items {
		if it.Product.ID == productID {
			return true
		}
	}
	return false
}

// summarize "Masala Chips x2, Nimko x1" para el campo orderInfo cuando el cliente no lo envía.
func summarize(items []domaincart.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := it.Product.Name
		if name == "" {
			name = it.Product.ID
		}
		parts = append(parts, fmt.Sprintf("%s x%d", name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func toResponse(s *domaincart.Store, notices []domaincart.Notice) *dto.CartResponse {
	q := s.Quote()
	role := s.Role()
	items := s.ActiveItems()
	out := &dto.CartResponse{
		ActiveVendorID: s.ActiveVendorID(),
		Buckets:        make(map[string]int),
		Items:          make([]dto.CartItemResponse, 0, len(items)),
	}
	for _, key := range s.BucketKeys() {
		out.Buckets[key] = len(s.Items(key))
	}
	for i, it := range items {
		p := it.Product
		line := dto.CartItemResponse{Product: *dto.NewProductResponse(&p, role), Quantity: it.Quantity}
		if i < len(q.Lines) {
			line.UnitPrice = q.Lines[i].UnitPrice
			line.Total = q.Lines[i].Total
		}
		out.Items = append(out.Items, line)
	}
	toBulk := pricing.BulkThreshold.Sub(q.ConsumerSubtotal)
	if q.Tier == pricing.TierBulk || toBulk.IsNegative() {
		toBulk = decimal.Zero
	}
	out.Quote = dto.CartQuote{
		Tier:             string(q.Tier),
		ConsumerSubtotal: q.ConsumerSubtotal,
		Subtotal:         q.Subtotal,
		BulkEligible:     q.BulkEligible(),
		AmountToBulk:     toBulk,
		MeetsMinimum:     len(items) > 0 && pricing.CheckMinimumOrder(q, role) == nil,
		MinimumOrder:     pricing.MinimumOrder,
	}
	for _, n := range notices {
		out.Notices = append(out.Notices, dto.CartNotice{
			Kind:           n.Kind,
			Message:        n.Message,
			DismissAfterMs: n.DismissAfter.Milliseconds(),
		})
	}
	return out
}
