package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reservations *inventory.ReservationUseCase
	Frames       *inventory.FrameAllocationUseCase
	OutboxAdmin  *outbox.AdminService
	Gatherer     prometheus.Gatherer // nil: sin /metrics
	JWTSecret    string
	JWTIssuer    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Inventario (público, lo consume el storefront)
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Reservations)
	invGroup.Get("/stock", inventoryHandler.ListStock)
	invGroup.Get("/stock/:productId", inventoryHandler.GetStock)

	// Reservas tentativas del carrito (público, identificadas por sesión)
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations)
	reservations.Post("/", reservationHandler.Create)
	reservations.Put("/:sessionId/:productId", reservationHandler.Update)
	reservations.Delete("/:sessionId/:productId", reservationHandler.Release)
	reservations.Delete("/:sessionId", reservationHandler.ReleaseAll)

	// Ciclo de pedidos (servicio de pedidos o admin, Bearer Token)
	orders := api.Group("/orders", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(jwt.RoleAdmin, jwt.RoleService))
	orderHandler := NewOrderHandler(deps.Reservations)
	orders.Post("/commit", orderHandler.Commit)
	orders.Post("/:orderId/confirm", orderHandler.Confirm)
	orders.Post("/:orderId/cancel", orderHandler.Cancel)

	// Administración (Bearer Token + rol admin)
	admin := api.Group("/admin", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(jwt.RoleAdmin))

	adminHandler := NewAdminHandler(deps.Reservations, deps.Frames)
	admin.Get("/inventory/:productId", adminHandler.GetProduct)
	admin.Post("/inventory/:productId/adjustments", adminHandler.AdjustStock)
	admin.Get("/inventory/:productId/adjustments", adminHandler.ListAdjustments)
	admin.Post("/inventory/:productId/allocate", adminHandler.Allocate)

	outboxHandler := NewOutboxHandler(deps.OutboxAdmin)
	admin.Get("/outbox", outboxHandler.List)
	admin.Post("/outbox/:id/requeue", outboxHandler.Requeue)
}
