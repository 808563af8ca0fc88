package http_test

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/application/events"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
	apphttp "github.com/jhoicas/snacks-api/internal/interfaces/http"
)

func seedOrder(f *apiFixture, id, userID string, number int64) *entity.Order {
	o := &entity.Order{
		ID: id, OrderNumber: number, Status: entity.OrderStatusAccepted,
		PhoneNumber: "03001234567", OrderInfo: "Masala Chips", Address: "House 12, Street 4",
		OrderPerson: "Ayesha", UserID: userID, Tier: "consumer",
		Products:  []entity.OrderProduct{{ID: id + "-l1", OrderID: id, ProductID: "chips", Quantity: 3}},
		CreatedAt: t0, UpdatedAt: t0,
	}
	f.store.AddOrder(o)
	return o
}

// readSSE devuelve los payloads "data:" en orden; ignora comentarios de heartbeat.
func readSSE(t *testing.T, resp *http.Response) []dto.OrderStreamEvent {
	t.Helper()
	defer resp.Body.Close()
	var out []dto.OrderStreamEvent
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev dto.OrderStreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		out = append(out, ev)
	}
	require.NoError(t, sc.Err())
	return out
}

// publishWhenSubscribed publica los eventos cuando el stream ya está suscrito y cierra el hub.
func publishWhenSubscribed(hub *events.Hub, evs ...events.Event) {
	go func() {
		deadline := time.Now().Add(3 * time.Second)
		for hub.Subscribers() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		for _, ev := range evs {
			hub.Publish(ev)
		}
		hub.Close()
	}()
}

func TestStream_SnapshotYFiltroPorDueño(t *testing.T) {
	f := newAPI(t)
	mine := seedOrder(f, "o-1", "u-1", 1)
	other := seedOrder(f, "o-2", "u-2", 2)

	publishWhenSubscribed(f.hub,
		events.Event{Type: events.TypeNewOrder, OrderID: other.ID, Order: other, At: t0},
		events.Event{Type: events.TypeOrderUpdated, OrderID: mine.ID, Order: mine, At: t0},
		events.Event{Type: events.TypeOrderDeleted, OrderID: "o-9", At: t0},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/stream?"+apphttp.TokenQueryParam+"="+
		strings.TrimPrefix(tokenFor(t, "u-1", entity.RoleUser), "Bearer "), nil)
	resp, err := f.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	got := readSSE(t, resp)
	require.Len(t, got, 3)

	assert.Equal(t, events.TypePendingOrders, got[0].Type)
	require.Len(t, got[0].Orders, 1, "el snapshot solo trae pedidos propios")
	assert.Equal(t, "o-1", got[0].Orders[0].ID)

	assert.Equal(t, events.TypeOrderUpdated, got[1].Type)
	require.NotNil(t, got[1].Order)
	assert.Equal(t, "o-1", got[1].Order.ID)

	assert.Equal(t, events.TypeOrderDeleted, got[2].Type)
	assert.Equal(t, "o-9", got[2].OrderID)
}

func TestStream_StaffVeTodo(t *testing.T) {
	f := newAPI(t)
	seedOrder(f, "o-1", "u-1", 1)
	other := seedOrder(f, "o-2", "u-2", 2)

	publishWhenSubscribed(f.hub, events.Event{Type: events.TypeNewOrder, OrderID: other.ID, Order: other, At: t0})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/stream", nil)
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleEmployee))
	resp, err := f.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := readSSE(t, resp)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Orders, 2)
	assert.Equal(t, events.TypeNewOrder, got[1].Type)
}

func TestStream_SinTokenNoSuscribe(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/orders/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, f.hub.Subscribers())
}
