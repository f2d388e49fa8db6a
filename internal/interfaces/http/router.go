package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturacion-api/internal/application/auth"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CustomerUC *billing.CustomerUseCase
	ProductUC  *billing.ProductUseCase
	SequenceUC *billing.SequenceUseCase
	InvoiceUC  *billing.InvoiceUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clientes
	clientes := protected.Group("/clientes")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	clientes.Post("/", customerHandler.Create)
	clientes.Get("/", customerHandler.List)
	clientes.Get("/:id", customerHandler.GetByID)
	clientes.Put("/:id", customerHandler.Update)
	clientes.Delete("/:id", customerHandler.Delete)

	// Productos
	productos := protected.Group("/productos")
	productHandler := NewProductHandler(deps.ProductUC)
	productos.Post("/", productHandler.Create)
	productos.Get("/", productHandler.List)
	productos.Get("/codigo/:codigo", productHandler.GetByCode)
	productos.Get("/:id", productHandler.GetByID)
	productos.Put("/:id", productHandler.Update)
	productos.Delete("/:id", productHandler.Delete)

	// Consecutivos
	consecutivos := protected.Group("/consecutivos")
	sequenceHandler := NewSequenceHandler(deps.SequenceUC)
	consecutivos.Post("/", sequenceHandler.Create)
	consecutivos.Get("/", sequenceHandler.List)
	consecutivos.Get("/:id", sequenceHandler.GetByID)

	// Facturas. Las rutas fijas van antes de /:id para que no las capture.
	facturas := protected.Group("/facturas")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	facturas.Post("/", invoiceHandler.Create)
	facturas.Get("/", invoiceHandler.List)
	facturas.Get("/estadisticas", invoiceHandler.Estadisticas)
	facturas.Get("/numero/:numero", invoiceHandler.GetByNumber)
	facturas.Get("/:id", invoiceHandler.GetByID)
	facturas.Put("/:id", invoiceHandler.Update)
	facturas.Delete("/:id", invoiceHandler.Delete)
}
