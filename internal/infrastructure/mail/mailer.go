// Package mail implementa el puerto notify.Mailer: SMTP con gomail o log cuando no hay servidor.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/snacks-api/internal/application/notify"
	"github.com/jhoicas/snacks-api/pkg/config"
)

var (
	_ notify.Mailer = (*SMTPMailer)(nil)
	_ notify.Mailer = (*LogMailer)(nil)
)

// Sender subconjunto de *gomail.Dialer (una conexión por envío).
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía correos HTML por SMTP.
type SMTPMailer struct {
	sender Sender
	from   string
}

// NewSMTPMailer construye el mailer a partir de la configuración SMTP.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// NewSMTPMailerWithSender permite inyectar el transporte (tests).
func NewSMTPMailerWithSender(sender Sender, from string) *SMTPMailer {
	return &SMTPMailer{sender: sender, from: from}
}

// Send arma el mensaje y lo entrega. gomail no acepta contexto: se verifica antes de marcar.
func (m *SMTPMailer) Send(ctx context.Context, email notify.Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("mail: sin destinatarios")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: enviar a %s: %w", strings.Join(email.To, ","), err)
	}
	return nil
}

// LogMailer registra el correo en lugar de enviarlo (desarrollo, SMTP_HOST vacío).
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer construye el mailer de log.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email notify.Email) error {
	m.log.Info().Strs("to", email.To).Str("subject", email.Subject).Int("html_bytes", len(email.HTML)).Msg("mail (log)")
	return nil
}

// New elige SMTP o log según la configuración.
func New(cfg config.SMTPConfig, log zerolog.Logger) notify.Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	log.Warn().Msg("SMTP_HOST vacío: los correos solo se registran en el log")
	return NewLogMailer(log)
}
