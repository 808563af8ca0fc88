package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func order(id string, n int64, status string, updated time.Duration) dto.OrderResponse {
	return dto.OrderResponse{
		ID:          id,
		OrderNumber: n,
		Status:      status,
		CreatedAt:   t0.Add(time.Duration(n) * time.Minute),
		UpdatedAt:   t0.Add(updated),
	}
}

func TestPendingOrders_SnapshotYEventosConvergen(t *testing.T) {
	// Mismo conjunto de cambios en dos órdenes distintos de llegada.
	snapshot := []dto.OrderResponse{order("a", 1, entity.OrderStatusAccepted, 0)}
	update := dto.OrderStreamEvent{Type: TypeOrderUpdated, Order: ptr(order("a", 1, entity.OrderStatusInTransit, time.Minute))}
	created := dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("b", 2, entity.OrderStatusAccepted, 2*time.Minute))}

	first := NewPendingOrders()
	first.ApplySnapshot(snapshot, t0)
	first.ApplyEvent(update)
	first.ApplyEvent(created)

	second := NewPendingOrders()
	second.ApplyEvent(created)
	second.ApplyEvent(update)
	second.ApplySnapshot(snapshot, t0) // snapshot viejo llega tarde

	for _, p := range []*PendingOrders{first, second} {
		got := p.Orders()
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	}
}

func TestPendingOrders_Idempotente(t *testing.T) {
	p := NewPendingOrders()
	ev := dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("a", 1, entity.OrderStatusAccepted, 0))}

	assert.True(t, p.ApplyEvent(ev))
	assert.False(t, p.ApplyEvent(ev), "la misma versión no cambia nada")
	assert.Equal(t, 1, p.Len())
}

func TestPendingOrders_SnapshotPodaLosQueSalieron(t *testing.T) {
	p := NewPendingOrders()
	p.ApplyEvent(dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("a", 1, entity.OrderStatusAccepted, 0))})
	p.ApplyEvent(dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("c", 3, entity.OrderStatusAccepted, 10*time.Minute))})

	// "a" dejó de estar pendiente mientras el cliente estaba desconectado; "c" es más nuevo que el snapshot.
	p.ApplySnapshot([]dto.OrderResponse{order("b", 2, entity.OrderStatusAccepted, time.Minute)}, t0.Add(5*time.Minute))

	ids := []string{}
	for _, o := range p.Orders() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"c", "b"}, ids, "más recientes primero")
}

func TestPendingOrders_Borrado(t *testing.T) {
	p := NewPendingOrders()
	p.ApplyEvent(dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("a", 1, entity.OrderStatusAccepted, 0))})

	assert.True(t, p.ApplyEvent(dto.OrderStreamEvent{Type: TypeOrderDeleted, OrderID: "a"}))
	p.ApplySnapshot([]dto.OrderResponse{order("a", 1, entity.OrderStatusAccepted, 0)}, t0)
	assert.Equal(t, 0, p.Len(), "un pedido borrado no revive")
}

func TestPendingOrders_SnapshotDelCanal(t *testing.T) {
	p := NewPendingOrders()
	p.ApplyEvent(dto.OrderStreamEvent{Type: TypeNewOrder, Order: ptr(order("viejo", 1, entity.OrderStatusAccepted, 0))})

	changed := p.ApplyEvent(dto.OrderStreamEvent{Type: TypePendingOrders, SentAt: t0.Add(time.Hour)})
	assert.True(t, changed)
	assert.Equal(t, 0, p.Len())
}

func ptr(o dto.OrderResponse) *dto.OrderResponse { return &o }
