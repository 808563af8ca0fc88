package repository

import "context"

// CartStateRepository guarda el snapshot serializado del carrito de cada usuario.
// Load devuelve (nil, nil) si el usuario no tiene carrito guardado.
type CartStateRepository interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, snapshot []byte) error
	Delete(ctx context.Context, userID string) error
}
