package order

import (
	"context"

	"github.com/jhoicas/snacks-api/internal/application/dto"
	"github.com/jhoicas/snacks-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción: el pedido, sus líneas, el vendor nuevo y
// la notificación del canal de eventos se confirman o se descartan juntos.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(orders repository.OrderRepository, vendors repository.VendorRepository) error) error
}

// ReceiptGenerator genera el recibo PDF de un pedido.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, order *dto.OrderResponse) ([]byte, error)
}
