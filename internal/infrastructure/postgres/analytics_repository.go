package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el resumen financiero.
// Los montos no se agregan en SQL: el agregador los recalcula con el motor de precios
// sobre los productos vivos de cada línea.
type AnalyticsRepo struct {
	orders *OrderRepo
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{orders: NewOrderRepository(q)}
}

// OrdersInRange pedidos creados en [from, to] con líneas y productos.
func (r *AnalyticsRepo) OrdersInRange(ctx context.Context, from, to *time.Time) ([]*entity.Order, error) {
	list, err := r.orders.List(ctx, repository.OrderFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("analytics.OrdersInRange: %w", err)
	}
	return list, nil
}
