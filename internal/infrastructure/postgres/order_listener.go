package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/events"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/pkg/config"
)

const (
	listenMinBackoff = time.Second
	listenMaxBackoff = 30 * time.Second
)

// OrderResolver lee el pedido completo referido por una notificación.
type OrderResolver interface {
	Resolve(ctx context.Context, id string) (*entity.Order, error)
}

// Publisher destino de los eventos resueltos (events.Hub).
type Publisher interface {
	Publish(ev events.Event)
}

// OrderListener escucha order_events en una conexión dedicada y publica cada cambio en el hub.
// Si la conexión se cae la reabre con backoff exponencial; solo se detiene al cancelar el contexto.
type OrderListener struct {
	connect func(ctx context.Context) (*pgx.Conn, error)
	resolve OrderResolver
	publish Publisher
	log     zerolog.Logger
}

// NewOrderListener construye el listener con la configuración de la base.
func NewOrderListener(cfg config.DBConfig, resolve OrderResolver, publish Publisher, log zerolog.Logger) *OrderListener {
	return &OrderListener{
		connect: func(ctx context.Context) (*pgx.Conn, error) { return Connect(ctx, cfg) },
		resolve: resolve,
		publish: publish,
		log:     log,
	}
}

// Run bloquea hasta que ctx se cancela.
func (l *OrderListener) Run(ctx context.Context) {
	backoff := listenMinBackoff
	for {
		err := l.listen(ctx, func() { backoff = listenMinBackoff })
		if ctx.Err() != nil {
			return
		}
		l.log.Error().Err(err).Dur("retry_in", backoff).Msg("order listener: conexión perdida, reintentando")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

// listen abre la conexión, ejecuta LISTEN y entrega notificaciones hasta el primer error.
func (l *OrderListener) listen(ctx context.Context, connected func()) error {
	conn, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{OrderEventsChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	connected()
	l.log.Info().Str("channel", OrderEventsChannel).Msg("order listener: escuchando")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.handle(ctx, n.Payload)
	}
}

// handle decodifica el payload, resuelve el pedido y lo publica.
// Un payload inválido o un pedido que ya no existe se registra y se descarta.
func (l *OrderListener) handle(ctx context.Context, payload string) {
	var n OrderNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil || n.ID == "" {
		l.log.Warn().Str("payload", payload).Msg("order listener: notificación ilegible")
		return
	}
	ev := events.Event{Type: n.Type, OrderID: n.ID, At: time.Now().UTC()}
	if n.Type != events.TypeOrderDeleted {
		o, err := l.resolve.Resolve(ctx, n.ID)
		if err != nil {
			l.log.Error().Err(err).Str("order_id", n.ID).Msg("order listener: no se pudo leer el pedido")
			return
		}
		if o == nil {
			l.log.Warn().Str("order_id", n.ID).Msg("order listener: pedido inexistente")
			return
		}
		ev.Order = o
	}
	l.publish.Publish(ev)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > listenMaxBackoff {
		return listenMaxBackoff
	}
	return d
}
