// Package orderstream mantiene la lista de pedidos pendientes de un cliente de la API
// combinando el snapshot REST con el canal SSE. Pensado para pantallas de despacho.
package orderstream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/events"
)

const (
	pendingPath = "/api/orders/pending"
	streamPath  = "/api/orders/stream"

	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// ErrUnauthorized el token fue rechazado; reconectar no sirve.
var ErrUnauthorized = errors.New("orderstream: token rechazado")

// Config datos de conexión.
type Config struct {
	BaseURL string // http://localhost:8080
	Token   string // JWT sin el prefijo Bearer
	// HTTPClient opcional; sin timeout global porque el stream es de larga duración.
	HTTPClient *http.Client
}

// Client snapshot + stream sobre un events.PendingOrders.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	state   *events.PendingOrders
	log     zerolog.Logger
}

// New construye el cliente con estado vacío.
func New(cfg Config, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    hc,
		state:   events.NewPendingOrders(),
		log:     log,
	}
}

// Pending pedidos pendientes conocidos, más recientes primero.
func (c *Client) Pending() []dto.OrderResponse {
	return c.state.Orders()
}

// Refresh pide el snapshot REST y lo aplica. Un pedido ya actualizado por el stream después
// de iniciada la petición no se pisa.
func (c *Client) Refresh(ctx context.Context) error {
	requestedAt := time.Now().UTC()
	resp, err := c.get(ctx, pendingPath, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var orders []dto.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return fmt.Errorf("orderstream: decodificar pendientes: %w", err)
	}
	c.state.ApplySnapshot(orders, requestedAt)
	return nil
}

// Run mantiene el stream abierto hasta que ctx se cancela, reconectando con backoff.
// onChange recibe la lista completa cada vez que cambia. Solo devuelve error si el token
// es rechazado; al cancelar ctx devuelve nil.
func (c *Client) Run(ctx context.Context, onChange func([]dto.OrderResponse)) error {
	if err := c.Refresh(ctx); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.log.Warn().Err(err).Msg("orderstream: snapshot inicial no disponible")
	} else if onChange != nil {
		onChange(c.Pending())
	}

	backoff := minBackoff
	for {
		err := c.stream(ctx, onChange, func() { backoff = minBackoff })
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("orderstream: stream cortado, reconectando")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// stream lee eventos hasta que la conexión termina. El primer evento del servidor es el
// snapshot PENDING_ORDERS, así que cada reconexión resincroniza el estado.
func (c *Client) stream(ctx context.Context, onChange func([]dto.OrderResponse), connected func()) error {
	resp, err := c.get(ctx, streamPath, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	connected()
	c.log.Info().Msg("orderstream: conectado")

	changed, errc := Consume(resp.Body, c.state)
	for ch := range changed {
		if ch && onChange != nil {
			onChange(c.Pending())
		}
	}
	if e := <-errc; e != nil {
		return e
	}
	return io.ErrUnexpectedEOF
}

// Consume aplica sobre state cada evento "data:" leído de r. Por changed sale un valor por
// evento aplicado (true si cambió el estado); al terminar se cierra changed y errc entrega
// el error de lectura (nil en EOF).
func Consume(r io.Reader, state *events.PendingOrders) (<-chan bool, <-chan error) {
	changed := make(chan bool)
	errc := make(chan error, 1)
	go func() {
		defer close(changed)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
		var data strings.Builder
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "data:"):
				data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			case line == "":
				if data.Len() == 0 {
					continue
				}
				var ev dto.OrderStreamEvent
				raw := data.String()
				data.Reset()
				if err := json.Unmarshal([]byte(raw), &ev); err != nil {
					continue
				}
				changed <- state.ApplyEvent(ev)
			}
			// comentarios (": ping") y otros campos se ignoran
		}
		errc <- sc.Err()
	}()
	return changed, errc
}

func (c *Client) get(ctx context.Context, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orderstream: GET %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	var body dto.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)
	return nil, fmt.Errorf("orderstream: GET %s: %d %s", path, resp.StatusCode, body.Error)
}
