package events

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// PendingOrders estado de pedidos ACCEPTED alimentado por dos fuentes (snapshot REST y canal
// de eventos). Cada versión se aplica de forma idempotente por ID del pedido, gana la de
// updatedAt más reciente; una versión igual o más vieja que la ya vista se ignora.
type PendingOrders struct {
	mu      sync.RWMutex
	pending map[string]dto.OrderResponse
	seen    map[string]time.Time // última versión aplicada de cada pedido, pendiente o no
	deleted map[string]struct{}
}

// NewPendingOrders estado vacío.
func NewPendingOrders() *PendingOrders {
	return &PendingOrders{
		pending: make(map[string]dto.OrderResponse),
		seen:    make(map[string]time.Time),
		deleted: make(map[string]struct{}),
	}
}

// ApplySnapshot aplica la lista de pendientes tomada en el instante at. Los pedidos
// ausentes del snapshot cuya última versión conocida es anterior a at dejan de estar pendientes.
func (p *PendingOrders) ApplySnapshot(orders []dto.OrderResponse, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inSnapshot := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		inSnapshot[o.ID] = struct{}{}
		p.apply(o)
	}
	for id, o := range p.pending {
		if _, ok := inSnapshot[id]; ok {
			continue
		}
		if !o.UpdatedAt.After(at) {
			delete(p.pending, id)
		}
	}
}

// ApplyEvent aplica un evento del canal. Devuelve true si cambió el estado.
func (p *PendingOrders) ApplyEvent(ev dto.OrderStreamEvent) bool {
	switch ev.Type {
	case TypePendingOrders:
		before := p.Len()
		at := ev.SentAt
		if at.IsZero() {
			at = snapshotTime(ev.Orders)
		}
		p.ApplySnapshot(ev.Orders, at)
		return before != p.Len() || len(ev.Orders) > 0
	case TypeNewOrder, TypeOrderUpdated:
		if ev.Order == nil {
			return false
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.apply(*ev.Order)
	case TypeOrderDeleted:
		p.mu.Lock()
		defer p.mu.Unlock()
		p.deleted[ev.OrderID] = struct{}{}
		_, had := p.pending[ev.OrderID]
		delete(p.pending, ev.OrderID)
		return had
	}
	return false
}

// apply requiere p.mu tomado.
func (p *PendingOrders) apply(o dto.OrderResponse) bool {
	if _, gone := p.deleted[o.ID]; gone {
		return false
	}
	if last, ok := p.seen[o.ID]; ok && !o.UpdatedAt.After(last) {
		return false
	}
	p.seen[o.ID] = o.UpdatedAt
	if o.Status == entity.OrderStatusAccepted {
		p.pending[o.ID] = o
		return true
	}
	_, had := p.pending[o.ID]
	delete(p.pending, o.ID)
	return had
}

// Orders pendientes, más recientes primero.
func (p *PendingOrders) Orders() []dto.OrderResponse {
	p.mu.RLock()
	out := make([]dto.OrderResponse, 0, len(p.pending))
	for _, o := range p.pending {
		out = append(out, o)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderNumber > out[j].OrderNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len cantidad de pendientes.
func (p *PendingOrders) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pending)
}

// snapshotTime instante de un snapshot sin sentAt: la versión más nueva que contiene.
func snapshotTime(orders []dto.OrderResponse) time.Time {
	var at time.Time
	for _, o := range orders {
		if o.UpdatedAt.After(at) {
			at = o.UpdatedAt
		}
	}
	return at
}
