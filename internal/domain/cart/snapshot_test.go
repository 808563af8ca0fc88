package cart_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/cart"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

func TestParseSnapshot_FormaActual(t *testing.T) {
	raw := []byte(`{
		"vendorCarts": {
			"default": [{"product": {"id": "p1", "name": "Chips", "consumerPrice": 1000, "bulkPrice": 800}, "quantity": 2}],
			"v1": [{"product": {"id": "p2", "name": "Nimko", "price": "250.50"}, "quantity": 9000}]
		},
		"activeVendorId": "v1"
	}`)

	snap, err := cart.ParseSnapshot(raw)
	require.NoError(t, err)

	require.NotNil(t, snap.ActiveVendorID)
	assert.Equal(t, "v1", *snap.ActiveVendorID)
	require.Len(t, snap.VendorCarts["default"], 1)
	assert.Equal(t, 2, snap.VendorCarts["default"][0].Quantity)
	assert.Equal(t, "1000", snap.VendorCarts["default"][0].Product.ConsumerPrice.Decimal.String())
	assert.Equal(t, cart.MaxQuantity, snap.VendorCarts["v1"][0].Quantity, "la cantidad se acota al cargar")
	assert.Equal(t, "250.5", snap.VendorCarts["v1"][0].Product.Price.Decimal.String())
}

func TestParseSnapshot_LegacyArregloDeItems(t *testing.T) {
	raw := []byte(`[
		{"product": {"id": "p1", "price": 100}, "quantity": 3},
		{"product": {"id": "p1", "price": 100}, "quantity": 2},
		{"product": {"id": "p2", "price": 50}}
	]`)

	snap, err := cart.ParseSnapshot(raw)
	require.NoError(t, err)

	assert.Nil(t, snap.ActiveVendorID)
	items := snap.VendorCarts[cart.DefaultBucket]
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity, "duplicados se fusionan")
	assert.Equal(t, 1, items[1].Quantity, "cantidad ausente vale 1")
}

func TestParseSnapshot_LegacyArregloDeProductos(t *testing.T) {
	raw := []byte(`[{"id": "p1", "name": "Chips", "price": 100}, {"id": "p2", "name": "Nimko", "price": 50}]`)

	snap, err := cart.ParseSnapshot(raw)
	require.NoError(t, err)

	items := snap.VendorCarts[cart.DefaultBucket]
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, 1, it.Quantity)
	}
	assert.Equal(t, "Nimko", items[1].Product.Name)
}

func TestParseSnapshot_Vacio(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]", "{}"} {
		snap, err := cart.ParseSnapshot([]byte(raw))
		require.NoError(t, err, "raw=%q", raw)
		assert.Contains(t, snap.VendorCarts, cart.DefaultBucket)
		assert.Empty(t, snap.VendorCarts[cart.DefaultBucket])
	}
}

func TestParseSnapshot_Invalido(t *testing.T) {
	for _, raw := range []string{`"texto"`, `{"vendorCarts": 5}`, `[1, 2]`, `{bad json`} {
		_, err := cart.ParseSnapshot([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "raw=%q", raw)
	}
}

func TestSnapshot_RoundTripDelStore(t *testing.T) {
	s := cart.New(entity.RoleEmployee)
	s.AddItem(product("p1", 1000, 800), 2)
	s.SetActiveVendorID(strPtr("v9"))
	s.AddItem(product("p2", 500, 400), 4)

	raw, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	snap, err := cart.ParseSnapshot(raw)
	require.NoError(t, err)
	restored := cart.FromSnapshot(snap, entity.RoleEmployee)

	assert.Equal(t, "v9", restored.ActiveKey())
	assert.Len(t, restored.Items(cart.DefaultBucket), 1)
	require.Len(t, restored.ActiveItems(), 1)
	assert.Equal(t, 4, restored.ActiveItems()[0].Quantity)
	assert.True(t, restored.Quote().Subtotal.Equal(s.Quote().Subtotal))
}
