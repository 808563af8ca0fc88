// Package pricing implementa el motor de precios por tiers (consumer / bulk).
//
// Reglas:
//   - consumer = ConsumerPrice ?? Price ?? RetailPrice ?? 0
//   - retail   = RetailPrice ?? OriginalPrice ?? consumer
//   - bulk     = BulkPrice ?? retail
//   - La elegibilidad bulk se mide SIEMPRE con el subtotal a precio consumer.
//   - EMPLOYEE siempre factura en bulk; el resto en bulk si el subtotal consumer >= 20000.
//   - El costo estimado de una línea es bulk × cantidad, sin importar el tier facturado.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// Tier nivel de precio aplicado a un carrito o pedido.
type Tier string

const (
	TierConsumer Tier = "consumer"
	TierBulk     Tier = "bulk"
)

var (
	// BulkThreshold subtotal consumer (inclusivo) a partir del cual aplica bulk.
	BulkThreshold = decimal.NewFromInt(20000)
	// MinimumOrder subtotal mínimo (inclusivo) para pedidos que no son de empleados.
	MinimumOrder = decimal.NewFromInt(3000)

	hundred = decimal.NewFromInt(100)
)

// Prices precios efectivos de un producto luego de resolver los respaldos.
type Prices struct {
	Consumer decimal.Decimal
	Retail   decimal.Decimal
	Bulk     decimal.Decimal
}

// ResolvePrices es el único lugar donde se define el orden de respaldo de los campos de precio.
func ResolvePrices(p entity.Product) Prices {
	consumer, ok := firstValid(p.ConsumerPrice, p.Price, p.RetailPrice)
	if !ok {
		consumer = decimal.Zero
	}
	retail, ok := firstValid(p.RetailPrice, p.OriginalPrice)
	if !ok {
		retail = consumer
	}
	bulk, ok := firstValid(p.BulkPrice)
	if !ok {
		bulk = retail
	}
	return Prices{Consumer: consumer, Retail: retail, Bulk: bulk}
}

func firstValid(values ...decimal.NullDecimal) (decimal.Decimal, bool) {
	for _, v := range values {
		if v.Valid {
			return v.Decimal, true
		}
	}
	return decimal.Zero, false
}

// Line producto + cantidad a cotizar.
type Line struct {
	Product  entity.Product
	Quantity int
}

// ConsumerSubtotal suma consumer × cantidad de todas las líneas (prueba de elegibilidad).
func ConsumerSubtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(ResolvePrices(l.Product).Consumer.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// IsBulkEligible indica si el subtotal consumer alcanza el umbral bulk (inclusivo).
func IsBulkEligible(consumerSubtotal decimal.Decimal) bool {
	return consumerSubtotal.GreaterThanOrEqual(BulkThreshold)
}

// SelectTier elige el tier para el rol y el subtotal consumer dados.
func SelectTier(role string, consumerSubtotal decimal.Decimal) Tier {
	if role == entity.RoleEmployee {
		return TierBulk
	}
	if IsBulkEligible(consumerSubtotal) {
		return TierBulk
	}
	return TierConsumer
}

// UnitPrice precio unitario a cobrar en el tier indicado.
func UnitPrice(p Prices, t Tier) decimal.Decimal {
	if t == TierBulk {
		return p.Bulk
	}
	return p.Consumer
}

// LineQuote cotización de una línea.
type LineQuote struct {
	ProductID string
	Quantity  int
	Prices    Prices
	UnitPrice decimal.Decimal
	Total     decimal.Decimal // UnitPrice × Quantity
	Cost      decimal.Decimal // Bulk × Quantity (proxy de costo)
}

// Quote cotización completa de un carrito o pedido.
type Quote struct {
	ConsumerSubtotal decimal.Decimal
	Tier             Tier
	Subtotal         decimal.Decimal // facturado en el tier aplicado
	Cost             decimal.Decimal
	Lines            []LineQuote
}

// Profit Subtotal - Cost.
func (q Quote) Profit() decimal.Decimal {
	return q.Subtotal.Sub(q.Cost)
}

// BulkEligible indica si el subtotal consumer alcanza el umbral, independiente del rol.
func (q Quote) BulkEligible() bool {
	return IsBulkEligible(q.ConsumerSubtotal)
}

// Calculate cotiza las líneas para el rol del llamador.
func Calculate(lines []Line, role string) Quote {
	consumerSubtotal := ConsumerSubtotal(lines)
	return quote(lines, consumerSubtotal, SelectTier(role, consumerSubtotal))
}

// CalculateForTier cotiza las líneas con un tier ya decidido (analítica por pedido).
func CalculateForTier(lines []Line, tier Tier) Quote {
	return quote(lines, ConsumerSubtotal(lines), tier)
}

func quote(lines []Line, consumerSubtotal decimal.Decimal, tier Tier) Quote {
	q := Quote{
		ConsumerSubtotal: consumerSubtotal,
		Tier:             tier,
		Subtotal:         decimal.Zero,
		Cost:             decimal.Zero,
		Lines:            make([]LineQuote, 0, len(lines)),
	}
	for _, l := range lines {
		prices := ResolvePrices(l.Product)
		qty := decimal.NewFromInt(int64(l.Quantity))
		unit := UnitPrice(prices, tier)
		lq := LineQuote{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Prices:    prices,
			UnitPrice: unit,
			Total:     unit.Mul(qty),
			Cost:      prices.Bulk.Mul(qty),
		}
		q.Subtotal = q.Subtotal.Add(lq.Total)
		q.Cost = q.Cost.Add(lq.Cost)
		q.Lines = append(q.Lines, lq)
	}
	return q
}

// CheckMinimumOrder aplica el pedido mínimo a roles que no son EMPLOYEE:
// Subtotal >= 3000 (inclusivo) o pedido ya elegible para bulk.
func CheckMinimumOrder(q Quote, role string) error {
	if role == entity.RoleEmployee {
		return nil
	}
	if q.Subtotal.GreaterThanOrEqual(MinimumOrder) || q.BulkEligible() {
		return nil
	}
	return domain.NewRuleError(domain.ErrInvalidInput, domain.CodeMinimumOrder,
		"Minimum order amount is Rs 3,000")
}

// Discount descuento mostrado al cliente: retail - consumer cuando es positivo y el rol no es EMPLOYEE.
// percent = round(discount / retail × 100).
func Discount(p Prices, role string) (amount decimal.Decimal, percent int64, ok bool) {
	if role == entity.RoleEmployee {
		return decimal.Zero, 0, false
	}
	d := p.Retail.Sub(p.Consumer)
	if !d.IsPositive() || !p.Retail.IsPositive() {
		return decimal.Zero, 0, false
	}
	return d, d.Div(p.Retail).Mul(hundred).Round(0).IntPart(), true
}

// OrderLines convierte las líneas de un pedido en líneas cotizables usando el producto vivo.
// Una línea cuyo producto ya no existe cotiza en cero.
func OrderLines(items []entity.OrderProduct) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		p := entity.Product{ID: it.ProductID}
		if it.Product != nil {
			p = *it.Product
		}
		lines = append(lines, Line{Product: p, Quantity: it.Quantity})
	}
	return lines
}

// QuoteOrder cotiza un pedido guardado con el tier registrado al crearlo; si no hay tier
// registrado se decide por el subtotal consumer del propio pedido.
func QuoteOrder(o *entity.Order) Quote {
	lines := OrderLines(o.Products)
	switch Tier(o.Tier) {
	case TierBulk, TierConsumer:
		return CalculateForTier(lines, Tier(o.Tier))
	}
	return CalculateForTier(lines, SelectTier("", ConsumerSubtotal(lines)))
}
