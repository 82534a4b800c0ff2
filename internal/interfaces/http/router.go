package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC   *usecase.CategoryUseCase
	JWTSecret    string
	JWTIssuer    string
	SupplierRole string // rol que puede modificar el catálogo
	Logger       zerolog.Logger
}

// Router registra middlewares comunes, /metrics y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(Metrics(), RequestLogger(deps.Logger))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token); el proveedor sale del token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	supplierOnly := RequireRole(deps.SupplierRole)

	categories := protected.Group("/categories")
	h := NewCategoryHandler(deps.CategoryUC, deps.Logger.With().Str("component", "categories").Logger())
	categories.Get("/", h.List)
	categories.Get("/tree", h.Tree)
	categories.Get("/slug/:slug", h.GetBySlug)
	categories.Get("/:id", h.GetByID)
	categories.Get("/:id/detail", h.Detail)
	categories.Get("/:id/path", h.Path)
	categories.Get("/:id/descendants", h.Descendants)
	categories.Post("/", supplierOnly, h.Create)
	categories.Patch("/:id", supplierOnly, h.Update)
	categories.Post("/:id/move", supplierOnly, h.Move)
	categories.Delete("/:id", supplierOnly, h.Delete)
}
