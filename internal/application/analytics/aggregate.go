// Package analytics recalcula ingresos, costo y utilidad a partir del historial de pedidos
// con las mismas reglas del motor de precios.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/pricing"
)

// DefaultTop número de productos en el top cuando no se indica.
const DefaultTop = 5

var hundred = decimal.NewFromInt(100)

// Options controla la agregación.
type Options struct {
	Top              int  // tamaño del top de productos; <= 0 usa DefaultTop
	IncludeCancelled bool // incluir pedidos CANCELLED en las cifras de dinero
}

type productAcc struct {
	row   dto.AnalyticsProduct
	first int
}

type companyAcc struct {
	row   dto.AnalyticsCompany
	first int
}

// Aggregate deriva el resumen de los pedidos sin modificarlos.
// El tier de cada pedido se decide con su subtotal consumer y se aplica a todas sus líneas.
// ByStatus cuenta todos los pedidos; las cifras de dinero excluyen los cancelados salvo IncludeCancelled.
func Aggregate(orders []*entity.Order, opts Options) *dto.AnalyticsSummaryDTO {
	top := opts.Top
	if top <= 0 {
		top = DefaultTop
	}

	sorted := make([]*entity.Order, 0, len(orders))
	for _, o := range orders {
		if o != nil {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	out := &dto.AnalyticsSummaryDTO{
		Totals: dto.AnalyticsTotals{
			Revenue:           decimal.Zero,
			Cost:              decimal.Zero,
			Profit:            decimal.Zero,
			AverageOrderValue: decimal.Zero,
			MarginPercent:     decimal.Zero,
		},
		ByDay:       []dto.AnalyticsDay{},
		ByStatus:    map[string]int{},
		TopProducts: []dto.AnalyticsProduct{},
		ByCompany:   []dto.AnalyticsCompany{},
		Orders:      []dto.AnalyticsOrder{},
	}

	days := map[string]int{} // fecha → índice en ByDay
	products := map[string]*productAcc{}
	companies := map[string]*companyAcc{}
	seq := 0

	for _, o := range sorted {
		out.ByStatus[o.Status]++
		if o.Status == entity.OrderStatusCancelled && !opts.IncludeCancelled {
			continue
		}

		lines := pricing.OrderLines(o.Products)
		q := pricing.CalculateForTier(lines, pricing.SelectTier("", pricing.ConsumerSubtotal(lines)))
		profit := q.Profit()

		out.Orders = append(out.Orders, dto.AnalyticsOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Status:      o.Status,
			Tier:        string(q.Tier),
			Revenue:     q.Subtotal,
			Cost:        q.Cost,
			Profit:      profit,
			CreatedAt:   o.CreatedAt,
		})

		out.Totals.Orders++
		out.Totals.Revenue = out.Totals.Revenue.Add(q.Subtotal)
		out.Totals.Cost = out.Totals.Cost.Add(q.Cost)

		date := o.CreatedAt.UTC().Format("2006-01-02")
		i, ok := days[date]
		if !ok {
			i = len(out.ByDay)
			days[date] = i
			out.ByDay = append(out.ByDay, dto.AnalyticsDay{Date: date, Revenue: decimal.Zero, Profit: decimal.Zero})
		}
		out.ByDay[i].Orders++
		out.ByDay[i].Revenue = out.ByDay[i].Revenue.Add(q.Subtotal)
		out.ByDay[i].Profit = out.ByDay[i].Profit.Add(profit)

		for k, lq := range q.Lines {
			out.Totals.Units += lq.Quantity
			line := lines[k]

			p, ok := products[lq.ProductID]
			if !ok {
				p = &productAcc{
					row:   dto.AnalyticsProduct{ProductID: lq.ProductID, Name: line.Product.Name, Revenue: decimal.Zero, Profit: decimal.Zero},
					first: seq,
				}
				products[lq.ProductID] = p
				seq++
			}
			p.row.Units += lq.Quantity
			p.row.Revenue = p.row.Revenue.Add(lq.Total)
			p.row.Profit = p.row.Profit.Add(lq.Total.Sub(lq.Cost))

			cid := line.Product.CompanyID
			if cid == "" {
				continue
			}
			c, ok := companies[cid]
			if !ok {
				c = &companyAcc{
					row:   dto.AnalyticsCompany{CompanyID: cid, Name: line.Product.CompanyName, Revenue: decimal.Zero},
					first: seq,
				}
				companies[cid] = c
				seq++
			}
			c.row.Units += lq.Quantity
			c.row.Revenue = c.row.Revenue.Add(lq.Total)
		}
	}

	t := &out.Totals
	t.Profit = t.Revenue.Sub(t.Cost)
	if t.Orders > 0 {
		t.AverageOrderValue = t.Revenue.Div(decimal.NewFromInt(int64(t.Orders))).Round(2)
	}
	if !t.Revenue.IsZero() {
		t.MarginPercent = t.Profit.Div(t.Revenue).Mul(hundred).Round(2)
	}

	sort.Slice(out.ByDay, func(i, j int) bool { return out.ByDay[i].Date < out.ByDay[j].Date })

	prows := make([]*productAcc, 0, len(products))
	for _, p := range products {
		prows = append(prows, p)
	}
	sort.Slice(prows, func(i, j int) bool {
		if c := prows[i].row.Revenue.Cmp(prows[j].row.Revenue); c != 0 {
			return c > 0
		}
		return prows[i].first < prows[j].first
	})
	if len(prows) > top {
		prows = prows[:top]
	}
	for _, p := range prows {
		out.TopProducts = append(out.TopProducts, p.row)
	}

	crows := make([]*companyAcc, 0, len(companies))
	for _, c := range companies {
		crows = append(crows, c)
	}
	sort.Slice(crows, func(i, j int) bool {
		if c := crows[i].row.Revenue.Cmp(crows[j].row.Revenue); c != 0 {
			return c > 0
		}
		return crows[i].first < crows[j].first
	})
	for _, c := range crows {
		out.ByCompany = append(out.ByCompany, c.row)
	}
	return out
}
