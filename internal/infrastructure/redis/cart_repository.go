// Package redis guarda el estado del carrito de cada usuario en Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/snacks-api/internal/domain/repository"
	"github.com/jhoicas/snacks-api/pkg/config"
)

var _ repository.CartStateRepository = (*CartRepo)(nil)

// DefaultCartTTL vigencia del carrito sin actividad cuando la configuración no la fija.
const DefaultCartTTL = 30 * 24 * time.Hour

// CartRepo un string JSON por usuario bajo cart:<userID>; cada Save renueva el TTL.
type CartRepo struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewCartRepo construye el repositorio. ttl <= 0 usa DefaultCartTTL.
func NewCartRepo(client goredis.Cmdable, ttl time.Duration) *CartRepo {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartRepo{client: client, prefix: "cart", ttl: ttl}
}

// WithPrefix cambia el prefijo de las claves (pruebas, varios entornos en una misma instancia).
func (r *CartRepo) WithPrefix(prefix string) *CartRepo {
	cp := *r
	cp.prefix = prefix
	return &cp
}

func (r *CartRepo) key(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, userID)
}

// Load devuelve (nil, nil) si el usuario no tiene carrito.
func (r *CartRepo) Load(ctx context.Context, userID string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return b, nil
}

func (r *CartRepo) Save(ctx context.Context, userID string, snapshot []byte) error {
	if err := r.client.Set(ctx, r.key(userID), snapshot, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *CartRepo) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
