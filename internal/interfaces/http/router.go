package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appinventory "github.com/jhoicas/bakery-ops/internal/application/inventory"
	"github.com/jhoicas/bakery-ops/internal/application/production"
	appworkorder "github.com/jhoicas/bakery-ops/internal/application/workorder"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName    string
	Inventory      *appinventory.Ledger
	WorkOrders     *appworkorder.Ledger
	TraceReport    *appinventory.TraceReportUseCase
	Catalog        *appinventory.Catalog // nil = catálogo vacío
	ConsumeRecipe  *production.ConsumeRecipeUseCase
	MetricsHandler nethttp.Handler // nil = sin /metrics
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Libro de lotes
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.TraceReport)
	inv.Get("/lots", inventoryHandler.ListLots)
	inv.Post("/lots", inventoryHandler.Receive)
	inv.Get("/lots/:id", inventoryHandler.GetLot)
	inv.Get("/lots/:id/transactions", inventoryHandler.LotTransactions)
	inv.Get("/lots/:id/trace.pdf", inventoryHandler.LotTracePDF)
	inv.Post("/lots/:id/transfer", inventoryHandler.Transfer)
	inv.Post("/lots/:id/adjust", inventoryHandler.Adjust)
	inv.Get("/transactions", inventoryHandler.ListTransactions)
	inv.Post("/issues", inventoryHandler.Issue)

	catalog := deps.Catalog
	if catalog == nil {
		catalog = appinventory.NewCatalog(deps.Inventory, nil, nil)
	}
	catalogHandler := NewCatalogHandler(catalog)
	inv.Get("/skus", catalogHandler.ListSKUs)
	inv.Get("/skus/:id", catalogHandler.GetSKU)
	inv.Get("/locations", catalogHandler.ListLocations)

	// Órdenes de trabajo (rutas fijas antes de /:id)
	wo := api.Group("/work-orders")
	woHandler := NewWorkOrderHandler(deps.WorkOrders, deps.ConsumeRecipe)
	wo.Get("/", woHandler.List)
	wo.Post("/", woHandler.Create)
	wo.Get("/updates", woHandler.Updates)
	wo.Post("/from-planning", woHandler.FromPlanning)
	wo.Get("/by-planning/:planningId", woHandler.ByPlanning)
	wo.Get("/:id", woHandler.Get)
	wo.Patch("/:id/status", woHandler.UpdateStatus)
	wo.Patch("/:id/quantities", woHandler.UpdateQuantities)
	wo.Post("/:id/employees", woHandler.AssignEmployees)
	wo.Post("/:id/notes", woHandler.AddNote)
	wo.Post("/:id/consume", woHandler.Consume)

	// Marcaciones de tiempo
	te := api.Group("/time-entries")
	teHandler := NewTimeEntryHandler(deps.WorkOrders)
	te.Get("/", teHandler.List)
	te.Post("/", teHandler.Create)
	te.Post("/:id/end", teHandler.End)
}
