package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/snacks-api/internal/application/analytics"
	"github.com/jhoicas/snacks-api/internal/application/auth"
	"github.com/jhoicas/snacks-api/internal/application/cart"
	"github.com/jhoicas/snacks-api/internal/application/order"
	"github.com/jhoicas/snacks-api/internal/application/usecase"
	"github.com/jhoicas/snacks-api/internal/domain/authz"
	"github.com/jhoicas/snacks-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	CompanyUC   *usecase.CompanyUseCase
	VendorUC    *usecase.VendorUseCase
	PeopleUC    *usecase.PeopleUseCase
	UploadUC    *usecase.UploadUseCase
	CartUC      *cart.UseCase
	OrderUC     *order.UseCase
	AnalyticsUC *analytics.UseCase
	Stream      *OrderStreamHandler
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authRequired := AuthMiddleware(deps.JWTSecret)
	optionalAuth := OptionalAuth(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)
	staffOnly := RequireRole(authz.Staff...)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authRequired, authHandler.Me)
	authGroup.Patch("/me", authRequired, authHandler.UpdateMe)

	// Catálogo: lectura pública (el token, si viene, ajusta el precio mostrado), escritura ADMIN
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Get("/", optionalAuth, productHandler.List)
	products.Get("/:id", optionalAuth, productHandler.GetByID)
	products.Post("/", authRequired, adminOnly, productHandler.Create)
	products.Patch("/:id", authRequired, adminOnly, productHandler.Update)
	products.Delete("/:id", authRequired, adminOnly, productHandler.Delete)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", authRequired, adminOnly, categoryHandler.Create)
	categories.Put("/:id", authRequired, adminOnly, categoryHandler.Update)
	categories.Delete("/:id", authRequired, adminOnly, categoryHandler.Delete)

	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies := api.Group("/companies")
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Post("/", authRequired, adminOnly, companyHandler.Create)
	companies.Put("/:id", authRequired, adminOnly, companyHandler.Update)
	companies.Delete("/:id", authRequired, adminOnly, companyHandler.Delete)

	// SSE antes del grupo protegido: acepta ?token=
	orderHandler := NewOrderHandler(deps.OrderUC)
	if deps.Stream != nil {
		api.Get("/orders/stream", StreamAuthMiddleware(deps.JWTSecret), deps.Stream.Stream)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", authRequired)

	vendorHandler := NewVendorHandler(deps.VendorUC)
	vendors := protected.Group("/vendors", staffOnly)
	vendors.Get("/", vendorHandler.List)
	vendors.Post("/", vendorHandler.Create)
	vendors.Get("/:id", vendorHandler.Get)
	vendors.Put("/:id", vendorHandler.Update)
	vendors.Delete("/:id", vendorHandler.Delete)

	peopleHandler := NewPeopleHandler(deps.PeopleUC)
	employees := protected.Group("/employees", adminOnly)
	employees.Get("/", peopleHandler.ListEmployees)
	employees.Post("/", peopleHandler.CreateEmployee)
	employees.Patch("/:id", peopleHandler.UpdateEmployee)
	employees.Delete("/:id", peopleHandler.DeleteEmployee)
	admins := protected.Group("/admins", adminOnly)
	admins.Get("/", peopleHandler.ListAdmins)
	admins.Post("/", peopleHandler.CreateAdmin)
	admins.Patch("/:id", peopleHandler.UpdateAdmin)
	admins.Delete("/:id", peopleHandler.DeleteAdmin)

	if deps.UploadUC != nil {
		uploadHandler := NewUploadHandler(deps.UploadUC)
		protected.Post("/uploads", adminOnly, uploadHandler.Upload)
	}

	cartHandler := NewCartHandler(deps.CartUC)
	cartGroup := protected.Group("/cart")
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Delete("/", cartHandler.Clear)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Patch("/items/:productId", cartHandler.UpdateItem)
	cartGroup.Delete("/items/:productId", cartHandler.RemoveItem)
	cartGroup.Put("/vendor", cartHandler.SelectVendor)
	cartGroup.Post("/vendors", cartHandler.CreateVendor)
	cartGroup.Put("/snapshot", cartHandler.Import)
	cartGroup.Post("/checkout", cartHandler.Checkout)

	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/pending", orderHandler.Pending)
	orders.Get("/:id", orderHandler.Get)
	orders.Patch("/:id", staffOnly, orderHandler.Update)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Delete("/:id", adminOnly, orderHandler.Delete)
	orders.Get("/:id/receipt", orderHandler.Receipt)

	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	protected.Get("/analytics/summary", adminOnly, analyticsHandler.Summary)
}
