// Package kafka reenvía los eventos de pedidos del hub en memoria a un tópico de Kafka
// para otros servicios (despacho, BI).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/events"
	"github.com/jhoicas/snacks-api/pkg/config"
)

// DefaultOrderTopic tópico cuando KAFKA_ORDER_TOPIC no está definido.
const DefaultOrderTopic = "snacks.orders"

const (
	subscriberBuffer = 256
	writeTimeout     = 10 * time.Second
)

// MessageWriter subconjunto de *kafka.Writer usado por el forwarder.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Subscriber fuente de eventos (events.Hub).
type Subscriber interface {
	Subscribe(buffer int) *events.Subscription
}

// OrderEventForwarder publica cada evento del hub como un mensaje JSON con clave = id del pedido,
// así los eventos de un mismo pedido caen en la misma partición y conservan el orden.
// Un fallo de escritura se registra y el evento se pierde; la API no depende de Kafka.
type OrderEventForwarder struct {
	writer MessageWriter
	hub    Subscriber
	log    zerolog.Logger
}

// NewWriter construye el writer síncrono para el tópico de pedidos.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	topic := cfg.OrderTopic
	if topic == "" {
		topic = DefaultOrderTopic
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		Transport: &kafkago.Transport{
			Dial: (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		},
	}
}

// NewOrderEventForwarder construye el forwarder.
func NewOrderEventForwarder(writer MessageWriter, hub Subscriber, log zerolog.Logger) *OrderEventForwarder {
	return &OrderEventForwarder{writer: writer, hub: hub, log: log}
}

// Run consume el hub hasta que ctx se cancela o el hub se cierra; luego cierra el writer.
func (f *OrderEventForwarder) Run(ctx context.Context) {
	sub := f.hub.Subscribe(subscriberBuffer)
	defer sub.Close()
	defer func() {
		if err := f.writer.Close(); err != nil {
			f.log.Warn().Err(err).Msg("kafka: cerrar writer")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := f.forward(ctx, ev); err != nil {
				f.log.Error().Err(err).Str("type", ev.Type).Str("order_id", ev.OrderID).Msg("kafka: evento no reenviado")
			}
		}
	}
}

func (f *OrderEventForwarder) forward(ctx context.Context, ev events.Event) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := f.writer.WriteMessages(wctx, msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Message serializa el evento; el tipo viaja también como header para filtrar sin decodificar.
func Message(ev events.Event) (kafkago.Message, error) {
	w := ev.Wire()
	value, err := json.Marshal(w)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serializar evento: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(w.OrderID),
		Value:   value,
		Time:    ev.At,
		Headers: []kafkago.Header{{Key: "type", Value: []byte(ev.Type)}},
	}, nil
}
