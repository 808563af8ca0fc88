package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

const (
	dateLayout = "2006-01-02"
	maxTop     = 50
)

// UseCase resumen financiero para el panel de administración.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type UseCase struct {
	repo repository.AnalyticsRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.AnalyticsRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Summary agrega los pedidos creados entre From y To (días UTC inclusivos; vacío no acota).
func (uc *UseCase) Summary(ctx context.Context, auth authz.Context, q dto.AnalyticsQuery) (*dto.AnalyticsSummaryDTO, error) {
	if err := authz.Authorize(auth, entity.RoleAdmin); err != nil {
		return nil, err
	}
	from, err := parseDay("from", q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDay("to", q.To)
	if err != nil {
		return nil, err
	}
	if to != nil {
		// hasta el último instante del día
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.NewValidationError("to", "to must not be before from")
	}
	if q.Top < 0 || q.Top > maxTop {
		return nil, domain.NewValidationError("top", fmt.Sprintf("top must be between 1 and %d", maxTop))
	}

	orders, err := uc.repo.OrdersInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics: pedidos del rango: %w", err)
	}
	return Aggregate(orders, Options{Top: q.Top, IncludeCancelled: q.IncludeCancelled}), nil
}

func parseDay(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, domain.NewValidationError(field, "date must use the YYYY-MM-DD format")
	}
	return &t, nil
}
