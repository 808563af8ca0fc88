package repository

import (
	"context"
	"time"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// AnalyticsRepository consultas de lectura para el agregador de analítica.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// OrdersInRange devuelve los pedidos creados en [from, to] con sus líneas y productos vivos.
	// Un extremo nil no acota.
	OrdersInRange(ctx context.Context, from, to *time.Time) ([]*entity.Order, error)
}
