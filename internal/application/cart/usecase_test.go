package cart_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/cart"
	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/application/usecase"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	domaincart "github.com/jhoicas/snacks-api/internal/domain/cart"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/testutil"
	"github.com/jhoicas/snacks-api/pkg/clock"
)

var (
	customer = authz.Context{UserID: "u-1", Role: entity.RoleUser}
	employee = authz.Context{UserID: "e-1", Role: entity.RoleEmployee}
)

func newCart(t *testing.T) (*cart.UseCase, *testutil.Store) {
	t.Helper()
	s := testutil.NewStore()
	s.AddProduct(&entity.Product{
		ID: "chips", Name: "Masala Chips",
		ConsumerPrice: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		RetailPrice:   decimal.NewNullDecimal(decimal.NewFromInt(1200)),
		BulkPrice:     decimal.NewNullDecimal(decimal.NewFromInt(800)),
	})
	orders := order.NewUseCase(s, s.OrderRepo(), s.ProductRepo(), s.VendorRepo(), &testutil.Notifier{},
		clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)), nil, zerolog.Nop())
	vendors := usecase.NewVendorUseCase(s.VendorRepo())
	return cart.NewUseCase(s.CartRepo(), s.ProductRepo(), vendors, orders, zerolog.Nop()), s
}

var delivery = dto.CheckoutRequest{PhoneNumber: "0300-1234567", Address: "12 Mall Road", OrderPerson: "Asha"}

func TestAddItem_PersisteYCotiza(t *testing.T) {
	uc, s := newCart(t)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "consumer", out.Quote.Tier)
	assert.True(t, out.Quote.Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, out.Quote.AmountToBulk.Equal(decimal.NewFromInt(18000)))
	assert.False(t, out.Quote.MeetsMinimum)
	assert.NotEmpty(t, s.Carts[customer.UserID])

	again, err := uc.Get(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestAddItem_ProductoInexistente(t *testing.T) {
	uc, _ := newCart(t)
	_, err := uc.AddItem(context.Background(), customer, dto.AddCartItemRequest{ProductID: "ghost", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_CantidadCeroRechazada(t *testing.T) {
	uc, s := newCart(t)
	_, err := uc.AddItem(context.Background(), customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 0})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Empty(t, s.Carts[customer.UserID])
}

func TestAddItem_AvisoBulkUnaVez(t *testing.T) {
	uc, _ := newCart(t)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 20})
	require.NoError(t, err)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, domaincart.NoticeBulkUnlocked, out.Notices[0].Kind)
	assert.Equal(t, int64(6000), out.Notices[0].DismissAfterMs)
	assert.True(t, out.Quote.AmountToBulk.IsZero())

	out, err = uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 1})
	require.NoError(t, err)
	assert.Empty(t, out.Notices)
}

func TestUpdateQuantity(t *testing.T) {
	uc, _ := newCart(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 2})
	require.NoError(t, err)

	out, err := uc.UpdateQuantity(ctx, customer, "chips", dto.UpdateCartItemRequest{Quantity: 9000})
	require.NoError(t, err)
	assert.Equal(t, domaincart.MaxQuantity, out.Items[0].Quantity)

	out, err = uc.UpdateQuantity(ctx, customer, "chips", dto.UpdateCartItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	_, err = uc.UpdateQuantity(ctx, customer, "chips", dto.UpdateCartItemRequest{Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_RefrescaPrecios(t *testing.T) {
	uc, s := newCart(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 3})
	require.NoError(t, err)

	s.Products["chips"].ConsumerPrice = decimal.NewNullDecimal(decimal.NewFromInt(1500))

	out, err := uc.Get(ctx, customer)
	require.NoError(t, err)
	assert.True(t, out.Quote.Subtotal.Equal(decimal.NewFromInt(4500)))
}

func TestSelectVendor_SoloStaffYBucketsAislados(t *testing.T) {
	uc, _ := newCart(t)
	ctx := context.Background()

	_, err := uc.SelectVendor(ctx, customer, dto.SelectVendorRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.AddItem(ctx, employee, dto.AddCartItemRequest{ProductID: "chips", Quantity: 1})
	require.NoError(t, err)

	created, err := uc.CreateVendor(ctx, employee, dto.VendorRequest{Name: "Corner Shop", PhoneNumber: "0300"})
	require.NoError(t, err)
	require.NotNil(t, created.Cart.ActiveVendorID)
	assert.Equal(t, created.Vendor.ID, *created.Cart.ActiveVendorID)
	assert.Empty(t, created.Cart.Items)
	assert.Equal(t, 1, created.Cart.Buckets[domaincart.DefaultBucket])

	back, err := uc.SelectVendor(ctx, employee, dto.SelectVendorRequest{VendorID: nil})
	require.NoError(t, err)
	assert.Nil(t, back.ActiveVendorID)
	assert.Len(t, back.Items, 1)

	ghost := "ghost"
	_, err = uc.SelectVendor(ctx, employee, dto.SelectVendorRequest{VendorID: &ghost})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckout_EmpleadoSinVendor(t *testing.T) {
	uc, _ := newCart(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, employee, dto.AddCartItemRequest{ProductID: "chips", Quantity: 1})
	require.NoError(t, err)

	_, err = uc.Checkout(ctx, employee, delivery)

	var rule *domain.RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, domain.CodeVendorRequired, rule.Code)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCheckout_EmpleadoConVendor(t *testing.T) {
	uc, s := newCart(t)
	ctx := context.Background()
	other, err := uc.CreateVendor(ctx, employee, dto.VendorRequest{Name: "Kiosk", PhoneNumber: "0311"})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, employee, dto.AddCartItemRequest{ProductID: "chips", Quantity: 2})
	require.NoError(t, err)
	created, err := uc.CreateVendor(ctx, employee, dto.VendorRequest{Name: "Corner Shop", PhoneNumber: "0300"})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, employee, dto.AddCartItemRequest{ProductID: "chips", Quantity: 1})
	require.NoError(t, err)

	placed, err := uc.Checkout(ctx, employee, delivery)
	require.NoError(t, err)
	require.NotNil(t, placed.P2PVendorID)
	assert.Equal(t, created.Vendor.ID, *placed.P2PVendorID)
	assert.Equal(t, "bulk", placed.Summary.Tier)
	assert.Equal(t, "Masala Chips x1", placed.OrderInfo)
	assert.Len(t, s.Orders, 1)

	after, err := uc.Get(ctx, employee)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.Nil(t, after.ActiveVendorID)
	assert.Equal(t, map[string]int{domaincart.DefaultBucket: 0}, after.Buckets)

	// el carrito del otro vendor también se vació
	back, err := uc.SelectVendor(ctx, employee, dto.SelectVendorRequest{VendorID: &other.Vendor.ID})
	require.NoError(t, err)
	assert.Empty(t, back.Items)
}

func TestCheckout_BajoMinimoConservaElCarrito(t *testing.T) {
	uc, s := newCart(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 2})
	require.NoError(t, err)

	_, err = uc.Checkout(ctx, customer, delivery)
	var rule *domain.RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, domain.CodeMinimumOrder, rule.Code)
	assert.Empty(t, s.Orders)

	still, err := uc.Get(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, still.Items, 1)
}

func TestCheckout_CarritoVacio(t *testing.T) {
	uc, _ := newCart(t)
	_, err := uc.Checkout(context.Background(), customer, delivery)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImport_Legacy(t *testing.T) {
	uc, _ := newCart(t)
	raw, err := json.Marshal([]map[string]any{
		{"product": map[string]any{"id": "chips", "name": "old name", "consumerPrice": "1"}, "quantity": 4},
	})
	require.NoError(t, err)

	out, err := uc.Import(context.Background(), customer, dto.ImportCartRequest{Snapshot: raw})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 4, out.Items[0].Quantity)
	assert.Equal(t, "Masala Chips", out.Items[0].Product.Name, "se refresca con el catálogo")

	_, err = uc.Import(context.Background(), customer, dto.ImportCartRequest{Snapshot: json.RawMessage(`"nope"`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClear(t *testing.T) {
	uc, s := newCart(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, customer, dto.AddCartItemRequest{ProductID: "chips", Quantity: 2})
	require.NoError(t, err)

	out, err := uc.Clear(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.NotContains(t, s.Carts, customer.UserID)
}

func TestSinSesion(t *testing.T) {
	uc, _ := newCart(t)
	_, err := uc.Get(context.Background(), authz.Context{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
