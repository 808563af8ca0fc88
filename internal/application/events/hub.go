// Package events distribuye los cambios de pedidos dentro del proceso (SSE, Kafka) y
// reconstruye la lista de pedidos pendientes a partir de snapshots y eventos.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// Tipos de evento del canal de pedidos.
const (
	TypePendingOrders = "PENDING_ORDERS"
	TypeNewOrder      = "NEW_ORDER"
	TypeOrderUpdated  = "ORDER_UPDATED"
	TypeOrderDeleted  = "ORDER_DELETED"
)

// Event cambio de un pedido. Order es nil en ORDER_DELETED.
type Event struct {
	Type    string
	OrderID string
	Order   *entity.Order
	At      time.Time
}

// Subscription suscripción al hub. C se cierra al cancelar la suscripción o cerrar el hub.
type Subscription struct {
	C <-chan Event

	id  uint64
	ch  chan Event
	hub *Hub
}

// Close cancela la suscripción. Idempotente.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// Hub fan-out en memoria. Publish nunca bloquea: si el buffer de un suscriptor está lleno
// el evento se descarta para ese suscriptor y se registra en el log.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool
	log    zerolog.Logger
}

// NewHub construye el hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{subs: make(map[uint64]chan Event), log: log}
}

// Subscribe registra un suscriptor con el buffer indicado (mínimo 1).
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.closed {
		close(ch)
	} else {
		h.subs[id] = ch
	}
	return &Subscription{C: ch, id: id, ch: ch, hub: h}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish entrega el evento a todos los suscriptores.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn().
				Uint64("subscriber", id).
				Str("type", ev.Type).
				Str("order_id", ev.OrderID).
				Msg("suscriptor lento, evento descartado")
		}
	}
}

// Subscribers cantidad de suscriptores activos.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close cierra todas las suscripciones; Publish posterior no hace nada.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Wire forma JSON del evento para SSE y Kafka.
func (ev Event) Wire() dto.OrderStreamEvent {
	out := dto.OrderStreamEvent{Type: ev.Type, OrderID: ev.OrderID, SentAt: ev.At}
	if ev.Order != nil {
		out.Order = dto.NewOrderResponse(ev.Order)
		out.OrderID = ev.Order.ID
	}
	return out
}
