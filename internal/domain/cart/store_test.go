package cart_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/domain/cart"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
)

func product(id string, consumer, bulk int64) entity.Product {
	return entity.Product{
		ID:            id,
		Name:          "Producto " + id,
		ConsumerPrice: decimal.NewNullDecimal(decimal.NewFromInt(consumer)),
		BulkPrice:     decimal.NewNullDecimal(decimal.NewFromInt(bulk)),
	}
}

func strPtr(s string) *string { return &s }

func TestAddItem_SumaEnLaMismaLinea(t *testing.T) {
	s := cart.New(entity.RoleUser)
	p := product("p1", 100, 80)

	s.AddItem(p, 2)
	s.AddItem(p, 3)

	items := s.ActiveItems()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItem_AcotaAlMaximo(t *testing.T) {
	s := cart.New(entity.RoleUser)
	p := product("p1", 1, 1)

	s.AddItem(p, 4000)
	s.AddItem(p, 4000)

	assert.Equal(t, cart.MaxQuantity, s.ActiveItems()[0].Quantity)
}

func TestAddItem_CantidadEnormeNoDesborda(t *testing.T) {
	s := cart.New(entity.RoleUser)
	p := product("p1", 1, 1)

	s.AddItem(p, 10)
	s.AddItem(p, math.MaxInt)

	assert.Equal(t, cart.MaxQuantity, s.ActiveItems()[0].Quantity)
}

func TestAddItem_CantidadPorDefecto(t *testing.T) {
	s := cart.New(entity.RoleUser)
	s.AddItem(product("p1", 1, 1), 0)
	assert.Equal(t, 1, s.ActiveItems()[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		removed bool
		want    int
	}{
		{"cero elimina", 0, true, 0},
		{"negativo elimina", -5, true, 0},
		{"sobre el máximo se acota", 6000, false, cart.MaxQuantity},
		{"valor normal", 7, false, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cart.New(entity.RoleUser)
			s.AddItem(product("p1", 100, 80), 2)

			s.UpdateQuantity("p1", tt.qty)

			items := s.ActiveItems()
			if tt.removed {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Quantity)
		})
	}
}

func TestUpdateQuantity_ProductoAusenteNoHaceNada(t *testing.T) {
	s := cart.New(entity.RoleUser)
	s.AddItem(product("p1", 100, 80), 2)
	s.UpdateQuantity("nope", 10)
	assert.Len(t, s.ActiveItems(), 1)
}

func TestRemoveItem(t *testing.T) {
	s := cart.New(entity.RoleUser)
	s.AddItem(product("p1", 100, 80), 1)
	s.AddItem(product("p2", 100, 80), 1)

	s.RemoveItem("p1")

	items := s.ActiveItems()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].Product.ID)
}

func TestSetActiveVendorID_NoMezclaBuckets(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.AddItem(product("own", 100, 80), 1)

	s.SetActiveVendorID(strPtr("vendorA"))
	s.AddItem(product("a1", 100, 80), 2)

	s.SetActiveVendorID(strPtr("vendorB"))
	assert.Empty(t, s.ActiveItems(), "el bucket de B arranca vacío")
	s.AddItem(product("b1", 100, 80), 3)

	s.SetActiveVendorID(strPtr("vendorA"))
	items := s.ActiveItems()
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].Product.ID)

	s.SetActiveVendorID(nil)
	assert.Equal(t, cart.DefaultBucket, s.ActiveKey())
	assert.Nil(t, s.ActiveVendorID())
	items = s.ActiveItems()
	require.Len(t, items, 1)
	assert.Equal(t, "own", items[0].Product.ID)

	assert.Len(t, s.Items("vendorB"), 1)
}

func TestEnsureVendorCart_Idempotente(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.SetActiveVendorID(strPtr("v1"))
	s.AddItem(product("p1", 100, 80), 4)

	s.EnsureVendorCart("v1")

	assert.Len(t, s.Items("v1"), 1, "no sobreescribe contenido existente")
	assert.ElementsMatch(t, []string{cart.DefaultBucket, "v1"}, s.BucketKeys())
}

func TestClearCart(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.AddItem(product("p1", 100, 80), 1)
	s.SetActiveVendorID(strPtr("v1"))
	s.AddItem(product("p2", 100, 80), 1)

	s.ClearCart()

	assert.Equal(t, []string{cart.DefaultBucket}, s.BucketKeys())
	assert.Empty(t, s.Items(cart.DefaultBucket))
	assert.Nil(t, s.ActiveVendorID())
}

func TestQuote_UsaElRolDelStore(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.AddItem(product("p1", 1000, 800), 1)

	q := s.Quote()
	assert.Equal(t, pricing.TierBulk, q.Tier)
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(800)))
}

func TestNotices_SoloEnElFlanco(t *testing.T) {
	s := cart.New(entity.RoleUser)
	p := product("p1", 1000, 800)

	s.AddItem(p, 10) // 10000
	assert.Empty(t, s.DrainNotices())

	s.AddItem(p, 10) // 20000 → transición
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, cart.NoticeBulkUnlocked, notices[0].Kind)
	assert.Equal(t, "6s", notices[0].DismissAfter.String())

	s.AddItem(p, 5) // sigue elegible, sin nuevo aviso
	assert.Empty(t, s.DrainNotices())

	s.UpdateQuantity("p1", 1) // cae bajo el umbral
	assert.Empty(t, s.DrainNotices())

	s.UpdateQuantity("p1", 30) // nueva transición
	assert.Len(t, s.DrainNotices(), 1)
}

func TestNotices_EmpleadoNuncaTransiciona(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.AddItem(product("p1", 1000, 800), 50)
	assert.Empty(t, s.DrainNotices())
}

func TestNotices_CargarSnapshotElegibleNoNotifica(t *testing.T) {
	s := cart.New(entity.RoleUser)
	s.AddItem(product("p1", 1000, 800), 25)
	s.DrainNotices()

	restored := cart.FromSnapshot(s.Snapshot(), entity.RoleUser)
	restored.AddItem(product("p2", 10, 10), 1)
	assert.Empty(t, restored.DrainNotices())
}

func TestReplaceProduct_ActualizaPrecios(t *testing.T) {
	s := cart.New(entity.RoleUser)
	s.AddItem(product("p1", 100, 80), 3)

	changed := s.ReplaceProduct(product("p1", 200, 150))

	assert.True(t, changed)
	assert.True(t, s.Quote().Subtotal.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 3, s.ActiveItems()[0].Quantity)
	assert.False(t, s.ReplaceProduct(product("otro", 1, 1)))
}
