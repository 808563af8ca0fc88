package repository

import (
	"context"
	"time"

	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// OrderFilter filtros de listado. Los campos vacíos no filtran.
type OrderFilter struct {
	UserID string
	Status string
	From   *time.Time
	To     *time.Time
}

// Tipos de notificación de pedido emitidos junto al commit.
const (
	OrderEventCreated = "NEW_ORDER"
	OrderEventUpdated = "ORDER_UPDATED"
	OrderEventDeleted = "ORDER_DELETED"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
// Los pedidos leídos traen sus líneas con el producto vivo y el vendor (si tiene).
type OrderRepository interface {
	// NextOrderNumber toma el siguiente número de pedido de la secuencia.
	NextOrderNumber(ctx context.Context) (int64, error)
	// Create inserta el pedido y todas sus líneas.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// Update persiste estado, datos de entrega y updated_at solo si el estado guardado sigue
	// siendo fromStatus. Devuelve domain.ErrStaleOrder si otro cambio se adelantó.
	Update(ctx context.Context, order *entity.Order, fromStatus string) error
	// List ordena por fecha de creación descendente.
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// Delete borra las líneas y luego el pedido.
	Delete(ctx context.Context, id string) error
	// Notify encola una notificación (LISTEN/NOTIFY) que se entrega al hacer commit.
	Notify(ctx context.Context, eventType, orderID string) error
}
