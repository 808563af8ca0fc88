// Package notify implementa el outbox de correos transaccionales: el caso de uso encola y
// sigue; un worker resuelve el destinatario, renderiza y envía. Los fallos solo se registran.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// Email correo listo para enviar.
type Email struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer puerto de envío (SMTP en producción, log en desarrollo).
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Message notificación encolada.
type Message struct {
	Template string
	UserID   string // destinatario: dueño del pedido
	Order    *dto.OrderResponse
}

// Notifier lo que los casos de uso ven del outbox.
type Notifier interface {
	Enqueue(msg Message)
}

const sendTimeout = 15 * time.Second

// Outbox cola en memoria con un worker.
type Outbox struct {
	queue  chan Message
	users  repository.UserRepository
	mailer Mailer
	log    zerolog.Logger
}

// NewOutbox construye el outbox con capacidad buffer.
func NewOutbox(buffer int, users repository.UserRepository, mailer Mailer, log zerolog.Logger) *Outbox {
	if buffer < 1 {
		buffer = 1
	}
	return &Outbox{
		queue:  make(chan Message, buffer),
		users:  users,
		mailer: mailer,
		log:    log,
	}
}

// Enqueue nunca bloquea ni falla: con la cola llena el mensaje se descarta y se registra.
func (o *Outbox) Enqueue(msg Message) {
	select {
	case o.queue <- msg:
	default:
		ev := o.log.Warn().Str("template", msg.Template)
		if msg.Order != nil {
			ev = ev.Str("order_id", msg.Order.ID)
		}
		ev.Msg("outbox lleno, notificación descartada")
	}
}

// Run procesa la cola hasta que ctx se cancela; al cancelar despacha lo ya encolado
// con un plazo corto.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case msg := <-o.queue:
			o.deliver(ctx, msg)
		case <-ctx.Done():
			o.drain()
			return
		}
	}
}

func (o *Outbox) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case msg := <-o.queue:
			o.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, msg Message) {
	log := o.log.With().Str("template", msg.Template).Str("user_id", msg.UserID).Logger()
	if msg.Order != nil {
		log = log.With().Str("order_id", msg.Order.ID).Logger()
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	user, err := o.users.GetByID(ctx, msg.UserID)
	if err != nil {
		log.Error().Err(err).Msg("notificación: leer destinatario")
		return
	}
	if user == nil || user.Email == "" {
		log.Warn().Msg("notificación: destinatario sin email")
		return
	}
	subject, html, err := Render(msg.Template, user.Name, msg.Order)
	if err != nil {
		log.Error().Err(err).Msg("notificación: render")
		return
	}
	if err := o.mailer.Send(ctx, Email{To: []string{user.Email}, Subject: subject, HTML: html}); err != nil {
		log.Error().Err(err).Msg("notificación: envío fallido")
		return
	}
	log.Debug().Msg("notificación enviada")
}
