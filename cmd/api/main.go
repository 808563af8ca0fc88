package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/snacks-api/internal/application/analytics"
	"github.com/jhoicas/snacks-api/internal/application/auth"
	"github.com/jhoicas/snacks-api/internal/application/cart"
	"github.com/jhoicas/snacks-api/internal/application/events"
	"github.com/jhoicas/snacks-api/internal/application/notify"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/application/usecase"
	infrakafka "github.com/jhoicas/snacks-api/internal/infrastructure/kafka"
	"github.com/jhoicas/snacks-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/snacks-api/internal/infrastructure/pdf"
	"github.com/jhoicas/snacks-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/snacks-api/internal/infrastructure/redis"
	"github.com/jhoicas/snacks-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/snacks-api/internal/interfaces/http"
	"github.com/jhoicas/snacks-api/pkg/clock"
	"github.com/jhoicas/snacks-api/pkg/config"
	"github.com/jhoicas/snacks-api/pkg/logger"

	_ "github.com/jhoicas/snacks-api/docs"
)

// @title        Snacks API
// @version      1.0
// @description  Tienda de snacks: catálogo, carrito, pedidos con seguimiento en vivo y analítica.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	redisClient, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	uploads, err := storage.NewLocalStorage(cfg.Uploads)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de uploads")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Workers en segundo plano: se detienen al cancelar ctx
	var workers sync.WaitGroup
	runWorker := func(run func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(ctx)
		}()
	}

	outbox := notify.NewOutbox(cfg.Outbox.Buffer, userRepo, mail.New(cfg.SMTP, log.Component("mail")), log.Component("outbox"))
	runWorker(outbox.Run)

	orderUC := order.NewUseCase(
		txRunner, orderRepo, productRepo, vendorRepo, outbox, clock.Real{},
		infrapdf.NewMarotoReceiptGenerator(cfg.App.Name), log.Component("orders"),
	)

	hub := events.NewHub(log.Component("hub"))
	listener := postgres.NewOrderListener(cfg.DB, orderUC, hub, log.Component("listener"))
	runWorker(listener.Run)

	if cfg.Kafka.Enabled() {
		forwarder := infrakafka.NewOrderEventForwarder(infrakafka.NewWriter(cfg.Kafka), hub, log.Component("kafka"))
		runWorker(forwarder.Run)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("reenvío a Kafka habilitado")
	}

	vendorUC := usecase.NewVendorUseCase(vendorRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
		BodyLimit:    usecase.MaxUploadSize + 1<<20,
		// sin WriteTimeout: el stream SSE de pedidos es de larga duración
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Snacks API",
	}))

	app.Static(cfg.Uploads.BaseURL, uploads.Dir())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   usecase.NewProductUseCase(productRepo, companyRepo, categoryRepo),
		CategoryUC:  usecase.NewCategoryUseCase(categoryRepo),
		CompanyUC:   usecase.NewCompanyUseCase(companyRepo),
		VendorUC:    vendorUC,
		PeopleUC:    usecase.NewPeopleUseCase(userRepo, postgres.NewEmployeeRepository(pool), postgres.NewAdminRepository(pool), log.Component("people")),
		UploadUC:    usecase.NewUploadUseCase(uploads),
		CartUC:      cart.NewUseCase(infraredis.NewCartRepo(redisClient, cfg.Redis.CartTTL), productRepo, vendorUC, orderUC, log.Component("cart")),
		OrderUC:     orderUC,
		AnalyticsUC: analytics.NewUseCase(postgres.NewAnalyticsRepository(pool)),
		Stream:      httpRouter.NewOrderStreamHandler(orderUC, hub, httpRouter.DefaultHeartbeat, log.Component("sse")),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// primero los workers y el hub: cerrar el hub termina los streams SSE abiertos
	stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	workers.Wait()

	log.Info().Msg("aplicación detenida")
}
