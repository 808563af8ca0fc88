// migrate aplica el esquema embebido de PostgreSQL y termina.
//
// Uso: go run ./cmd/migrate
// Lee la conexión de las mismas variables que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"time"

	"github.com/jhoicas/snacks-api/internal/infrastructure/postgres"
	"github.com/jhoicas/snacks-api/pkg/config"
	"github.com/jhoicas/snacks-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("esquema al día")
}
