package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/notify"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	"github.com/jhoicas/snacks-api/internal/testutil"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
	done chan struct{}
}

func newFakeMailer() *fakeMailer { return &fakeMailer{done: make(chan struct{}, 10)} }

func (m *fakeMailer) Send(_ context.Context, e notify.Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	m.done <- struct{}{}
	return m.err
}

func (m *fakeMailer) Sent() []notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Email(nil), m.sent...)
}

func sampleOrder() *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:          "o-1",
		OrderNumber: 1042,
		Status:      entity.OrderStatusAccepted,
		Address:     "12 Mall Road",
		OrderPerson: "Asha",
		Products: []dto.OrderProductResponse{
			{ProductID: "p-1", Quantity: 3, Total: decimal.NewFromInt(3000),
				Product: &dto.ProductResponse{Name: "Masala Chips"}},
		},
		Summary: dto.OrderSummary{Subtotal: decimal.NewFromInt(3000)},
	}
}

func TestOutbox_EntregaCorreoRenderizado(t *testing.T) {
	store := testutil.NewStore()
	store.AddUser(&entity.User{ID: "u-1", Email: "asha@example.com", Name: "Asha"})
	mailer := newFakeMailer()
	ob := notify.NewOutbox(4, store.UserRepo(), mailer, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ob.Run(ctx)

	ob.Enqueue(notify.Message{Template: notify.TemplateOrderPlaced, UserID: "u-1", Order: sampleOrder()})

	select {
	case <-mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("el correo no se envió")
	}
	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, sent[0].To)
	assert.Equal(t, "Order #1042 placed", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Masala Chips")
	assert.Contains(t, sent[0].HTML, "Rs 3,000")
}

func TestOutbox_EnqueueNoBloqueaConColaLlena(t *testing.T) {
	store := testutil.NewStore()
	ob := notify.NewOutbox(1, store.UserRepo(), newFakeMailer(), zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			ob.Enqueue(notify.Message{Template: notify.TemplateOrderPlaced, UserID: "u-1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue bloqueó sin worker")
	}
}

func TestOutbox_ErrorDelMailerNoPropaga(t *testing.T) {
	store := testutil.NewStore()
	store.AddUser(&entity.User{ID: "u-1", Email: "asha@example.com", Name: "Asha"})
	mailer := newFakeMailer()
	mailer.err = errors.New("smtp caído")
	ob := notify.NewOutbox(4, store.UserRepo(), mailer, zerolog.Nop())

	ob.Enqueue(notify.Message{Template: notify.TemplateOrderCancelled, UserID: "u-1", Order: sampleOrder()})
	ob.Enqueue(notify.Message{Template: notify.TemplateOrderDelivered, UserID: "u-1", Order: sampleOrder()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// con ctx cancelado Run despacha lo encolado y retorna
	ob.Run(ctx)

	assert.Len(t, mailer.Sent(), 2)
}

func TestOutbox_DestinatarioDesconocidoNoEnvia(t *testing.T) {
	store := testutil.NewStore()
	mailer := newFakeMailer()
	ob := notify.NewOutbox(4, store.UserRepo(), mailer, zerolog.Nop())

	ob.Enqueue(notify.Message{Template: notify.TemplateOrderPlaced, UserID: "nadie", Order: sampleOrder()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ob.Run(ctx)

	assert.Empty(t, mailer.Sent())
}

func TestOutbox_PlantillaDesconocidaNoEnvia(t *testing.T) {
	store := testutil.NewStore()
	store.AddUser(&entity.User{ID: "u-1", Email: "asha@example.com", Name: "Asha"})
	mailer := newFakeMailer()
	ob := notify.NewOutbox(4, store.UserRepo(), mailer, zerolog.Nop())

	ob.Enqueue(notify.Message{Template: "NOPE", UserID: "u-1", Order: sampleOrder()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ob.Run(ctx)

	assert.Empty(t, mailer.Sent())
}
