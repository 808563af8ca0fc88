package http

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/events"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
)

const (
	// DefaultHeartbeat intervalo de comentarios keep-alive del SSE.
	DefaultHeartbeat = 20 * time.Second
	streamBuffer     = 64
)

// EventSubscriber fuente de eventos de pedidos (events.Hub).
type EventSubscriber interface {
	Subscribe(buffer int) *events.Subscription
}

// OrderStreamHandler canal SSE de pedidos para el panel de despacho y el seguimiento del cliente.
type OrderStreamHandler struct {
	orders    *order.UseCase
	hub       EventSubscriber
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewOrderStreamHandler construye el handler. heartbeat <= 0 usa DefaultHeartbeat.
func NewOrderStreamHandler(orders *order.UseCase, hub EventSubscriber, heartbeat time.Duration, log zerolog.Logger) *OrderStreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &OrderStreamHandler{orders: orders, hub: hub, heartbeat: heartbeat, log: log}
}

// Stream godoc
// @Summary      Canal de eventos de pedidos (SSE)
// @Description  Primer evento {type: PENDING_ORDERS, orders}; luego NEW_ORDER / ORDER_UPDATED / ORDER_DELETED
// @Description  filtrados por visibilidad. El token puede ir en el header o en ?token=.
// @Tags         orders
// @Security     Bearer
// @Produce      text/event-stream
// @Param        token  query  string  false  "JWT para clientes EventSource"
// @Success      200
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/orders/stream [get]
func (h *OrderStreamHandler) Stream(c *fiber.Ctx) error {
	auth := GetAuth(c)
	// suscribir antes de leer el snapshot: un cambio entre ambos llega como evento
	sub := h.hub.Subscribe(streamBuffer)
	pending, err := h.orders.Pending(c.UserContext(), auth)
	if err != nil {
		sub.Close()
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With().Str("user_id", auth.UserID).Logger()
	snapshot := dto.PendingOrdersEvent{Type: events.TypePendingOrders, Orders: pending, SentAt: time.Now().UTC()}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		if err := writeSSE(w, snapshot); err != nil {
			log.Debug().Err(err).Msg("sse: cliente desconectado")
			return
		}
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if !visibleEvent(auth, ev) {
					continue
				}
				if err := writeSSE(w, ev.Wire()); err != nil {
					log.Debug().Err(err).Msg("sse: cliente desconectado")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// visibleEvent staff recibe todo; un cliente solo sus pedidos. ORDER_DELETED no trae el
// pedido y se entrega a todos: solo expone el id.
func visibleEvent(auth authz.Context, ev events.Event) bool {
	if ev.Order == nil {
		return ev.Type == events.TypeOrderDeleted
	}
	return order.Visible(auth, ev.Order)
}

func writeSSE(w *bufio.Writer, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
