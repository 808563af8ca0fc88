package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func price(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(dec(v)) }

// chips producto de los escenarios: consumer 1000, retail 1200, bulk 800.
func chips() entity.Product {
	return entity.Product{
		ID:            "chips",
		ConsumerPrice: price(1000),
		RetailPrice:   price(1200),
		BulkPrice:     price(800),
	}
}

func TestResolvePrices(t *testing.T) {
	t.Run("todos los campos", func(t *testing.T) {
		p := ResolvePrices(chips())
		assert.True(t, p.Consumer.Equal(dec(1000)))
		assert.True(t, p.Retail.Equal(dec(1200)))
		assert.True(t, p.Bulk.Equal(dec(800)))
	})

	t.Run("solo price: todo cae en price", func(t *testing.T) {
		p := ResolvePrices(entity.Product{Price: price(500)})
		assert.True(t, p.Consumer.Equal(dec(500)))
		assert.True(t, p.Retail.Equal(dec(500)))
		assert.True(t, p.Bulk.Equal(dec(500)))
	})

	t.Run("consumer cae en retail", func(t *testing.T) {
		p := ResolvePrices(entity.Product{RetailPrice: price(900)})
		assert.True(t, p.Consumer.Equal(dec(900)))
		assert.True(t, p.Retail.Equal(dec(900)))
	})

	t.Run("consumerPrice gana sobre price", func(t *testing.T) {
		p := ResolvePrices(entity.Product{Price: price(700), ConsumerPrice: price(650)})
		assert.True(t, p.Consumer.Equal(dec(650)))
	})

	t.Run("retail cae en originalPrice antes que en consumer", func(t *testing.T) {
		p := ResolvePrices(entity.Product{Price: price(700), OriginalPrice: price(750)})
		assert.True(t, p.Retail.Equal(dec(750)))
		assert.True(t, p.Bulk.Equal(dec(750)), "bulk sin valor cae en retail")
	})

	t.Run("sin precios: cero", func(t *testing.T) {
		p := ResolvePrices(entity.Product{})
		assert.True(t, p.Consumer.IsZero())
		assert.True(t, p.Retail.IsZero())
		assert.True(t, p.Bulk.IsZero())
	})
}

func TestConsumerSubtotal_IgnoraTierFacturado(t *testing.T) {
	lines := []Line{{Product: chips(), Quantity: 25}}
	assert.True(t, ConsumerSubtotal(lines).Equal(dec(25000)))

	q := Calculate(lines, entity.RoleUser)
	assert.Equal(t, TierBulk, q.Tier)
	assert.True(t, q.ConsumerSubtotal.Equal(dec(25000)), "la prueba de elegibilidad usa consumer")
	assert.True(t, q.Subtotal.Equal(dec(20000)), "lo facturado usa bulk")
}

func TestSelectTier(t *testing.T) {
	assert.Equal(t, TierConsumer, SelectTier(entity.RoleUser, dec(19999)))
	assert.Equal(t, TierBulk, SelectTier(entity.RoleUser, dec(20000)), "límite inclusivo")
	assert.Equal(t, TierConsumer, SelectTier(entity.RoleAdmin, dec(100)))
	assert.Equal(t, TierBulk, SelectTier(entity.RoleEmployee, decimal.Zero), "empleado siempre bulk, aun con carrito vacío")
}

func TestCalculate_Escenarios(t *testing.T) {
	t.Run("A: consumer, bajo el mínimo", func(t *testing.T) {
		q := Calculate([]Line{{Product: chips(), Quantity: 2}}, entity.RoleUser)
		assert.True(t, q.ConsumerSubtotal.Equal(dec(2000)))
		assert.Equal(t, TierConsumer, q.Tier)
		require.Len(t, q.Lines, 1)
		assert.True(t, q.Lines[0].UnitPrice.Equal(dec(1000)))
		assert.True(t, q.Lines[0].Total.Equal(dec(2000)))

		err := CheckMinimumOrder(q, entity.RoleUser)
		var re *domain.RuleError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, domain.CodeMinimumOrder, re.Code)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("B: bulk por subtotal", func(t *testing.T) {
		q := Calculate([]Line{{Product: chips(), Quantity: 25}}, entity.RoleUser)
		assert.Equal(t, TierBulk, q.Tier)
		assert.True(t, q.Lines[0].UnitPrice.Equal(dec(800)))
		assert.True(t, q.Subtotal.Equal(dec(20000)))
		assert.NoError(t, CheckMinimumOrder(q, entity.RoleUser))
	})

	t.Run("C: empleado siempre bulk", func(t *testing.T) {
		p := entity.Product{ID: "x", ConsumerPrice: price(1000), BulkPrice: price(800)}
		q := Calculate([]Line{{Product: p, Quantity: 1}}, entity.RoleEmployee)
		assert.Equal(t, TierBulk, q.Tier)
		assert.True(t, q.Lines[0].UnitPrice.Equal(dec(800)))
		assert.NoError(t, CheckMinimumOrder(q, entity.RoleEmployee), "empleados exentos del mínimo")
	})
}

func TestCalculate_CostoEsBulk(t *testing.T) {
	q := Calculate([]Line{{Product: chips(), Quantity: 3}}, entity.RoleUser)
	assert.True(t, q.Subtotal.Equal(dec(3000)))
	assert.True(t, q.Cost.Equal(dec(2400)))
	assert.True(t, q.Profit().Equal(dec(600)))
}

func TestCheckMinimumOrder_LimiteInclusivo(t *testing.T) {
	p := entity.Product{ID: "p", Price: price(1500)}
	q := Calculate([]Line{{Product: p, Quantity: 2}}, entity.RoleUser)
	require.True(t, q.Subtotal.Equal(dec(3000)))
	assert.NoError(t, CheckMinimumOrder(q, entity.RoleUser))

	q = Calculate([]Line{{Product: p, Quantity: 1}}, entity.RoleAdmin)
	assert.Error(t, CheckMinimumOrder(q, entity.RoleAdmin), "admin no está exento")
}

func TestCheckMinimumOrder_BulkCubreMinimo(t *testing.T) {
	// bulk muy bajo: el subtotal facturado queda bajo 3000 pero el pedido ya es bulk.
	p := entity.Product{ID: "p", ConsumerPrice: price(1000), BulkPrice: price(100)}
	q := Calculate([]Line{{Product: p, Quantity: 20}}, entity.RoleUser)
	require.Equal(t, TierBulk, q.Tier)
	require.True(t, q.Subtotal.Equal(dec(2000)))
	assert.NoError(t, CheckMinimumOrder(q, entity.RoleUser))
}

func TestDiscount(t *testing.T) {
	prices := ResolvePrices(chips())

	amount, pct, ok := Discount(prices, entity.RoleUser)
	require.True(t, ok)
	assert.True(t, amount.Equal(dec(200)))
	assert.Equal(t, int64(17), pct, "round(200/1200*100) = 17")

	_, _, ok = Discount(prices, entity.RoleEmployee)
	assert.False(t, ok, "empleados no ven descuentos")

	_, _, ok = Discount(ResolvePrices(entity.Product{Price: price(100)}), entity.RoleUser)
	assert.False(t, ok, "sin diferencia no hay descuento")
}

func TestQuoteOrder(t *testing.T) {
	p := chips()
	o := &entity.Order{
		Tier:     string(TierBulk),
		Products: []entity.OrderProduct{{ProductID: p.ID, Quantity: 1, Product: &p}},
	}
	q := QuoteOrder(o)
	assert.Equal(t, TierBulk, q.Tier, "respeta el tier registrado (pedido de empleado)")
	assert.True(t, q.Subtotal.Equal(dec(800)))

	o.Tier = ""
	q = QuoteOrder(o)
	assert.Equal(t, TierConsumer, q.Tier, "sin tier registrado decide el subtotal consumer")

	o.Products = append(o.Products, entity.OrderProduct{ProductID: "borrado", Quantity: 3})
	q = QuoteOrder(o)
	require.Len(t, q.Lines, 2)
	assert.True(t, q.Lines[1].Total.IsZero(), "producto inexistente cotiza en cero")
}
