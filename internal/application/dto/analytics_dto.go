package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsTotals totales del período.
type AnalyticsTotals struct {
	Orders            int             `json:"orders"`
	Units             int             `json:"units"`
	Revenue           decimal.Decimal `json:"revenue"`
	Cost              decimal.Decimal `json:"cost"`
	Profit            decimal.Decimal `json:"profit"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	MarginPercent     decimal.Decimal `json:"marginPercent"`
}

// AnalyticsDay punto de la serie diaria (fecha YYYY-MM-DD en UTC).
type AnalyticsDay struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// AnalyticsProduct fila del top de productos por ingreso.
type AnalyticsProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
}

// AnalyticsCompany ingreso agregado por marca.
type AnalyticsCompany struct {
	CompanyID string          `json:"companyId"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// AnalyticsOrder métricas recalculadas de un pedido.
type AnalyticsOrder struct {
	ID          string          `json:"id"`
	OrderNumber int64           `json:"orderNumber"`
	Status      string          `json:"status"`
	Tier        string          `json:"tier"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// AnalyticsSummaryDTO respuesta de GET /api/analytics/summary.
type AnalyticsSummaryDTO struct {
	Totals      AnalyticsTotals    `json:"totals"`
	ByDay       []AnalyticsDay     `json:"byDay"`
	ByStatus    map[string]int     `json:"byStatus"`
	TopProducts []AnalyticsProduct `json:"topProducts"`
	ByCompany   []AnalyticsCompany `json:"byCompany"`
	Orders      []AnalyticsOrder   `json:"orders"`
}

// AnalyticsQuery filtros de GET /api/analytics/summary. From/To en formato YYYY-MM-DD (UTC, inclusivos).
type AnalyticsQuery struct {
	From             string `query:"from"`
	To               string `query:"to"`
	Top              int    `query:"top"`
	IncludeCancelled bool   `query:"includeCancelled"`
}
