package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
)

// Handlers collects the HTTP handlers the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Vehicles     *handlers.VehicleHandler
	Vendors      *handlers.VendorHandler
	ServiceTypes *handlers.ServiceTypeHandler
	Invoices     *handlers.InvoiceHandler
	LineItems    *handlers.LineItemHandler
	Alerts       *handlers.AlertHandler
	Documents    *handlers.DocumentHandler
	Health       *handlers.HealthHandler
}

// NewRouter builds the HTTP routing tree. Reads require a view permission,
// writes a manage permission; reconciliation is reserved for managers and
// admins.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Health)

	rateLimit := middleware.NewRateLimitMiddleware()

	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit.RateLimit(10, 60)).Post("/login", h.Auth.Login)
			r.With(rateLimit.RateLimit(10, 60)).Post("/register", h.Auth.Register)
			r.Get("/profile", h.Auth.GetProfile)
			r.Put("/profile", h.Auth.UpdateProfile)
			r.Post("/change-password", h.Auth.ChangePassword)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_vehicles")).Get("/", h.Vehicles.List)
			r.With(authMW.RequirePermission("view_vehicles")).Get("/{id}", h.Vehicles.Get)
			r.With(authMW.RequirePermission("view_vehicles")).Get("/vin/{vin}", h.Vehicles.DecodeVIN)
			r.With(authMW.RequirePermission("manage_vehicles")).Post("/", h.Vehicles.Create)
			r.With(authMW.RequirePermission("manage_vehicles")).Post("/import", h.Vehicles.BulkImport)
			r.With(authMW.RequirePermission("manage_vehicles")).Put("/{id}", h.Vehicles.Update)
			r.With(authMW.RequirePermission("manage_vehicles")).Delete("/{id}", h.Vehicles.Delete)
		})

		r.Route("/vendors", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_vendors")).Get("/", h.Vendors.List)
			r.With(authMW.RequirePermission("view_vendors")).Get("/{id}", h.Vendors.Get)
			r.With(authMW.RequirePermission("manage_vendors")).Post("/", h.Vendors.Create)
			r.With(authMW.RequirePermission("manage_vendors")).Post("/import", h.Vendors.BulkImport)
			r.With(authMW.RequirePermission("manage_vendors")).Put("/{id}", h.Vendors.Update)
			r.With(authMW.RequirePermission("manage_vendors")).Delete("/{id}", h.Vendors.Delete)
		})

		r.Route("/service-types", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_catalog")).Get("/", h.ServiceTypes.List)
			r.With(authMW.RequirePermission("view_catalog")).Get("/{id}", h.ServiceTypes.Get)
			r.With(authMW.RequirePermission("manage_catalog")).Post("/", h.ServiceTypes.Create)
			r.With(authMW.RequirePermission("manage_catalog")).Post("/import", h.ServiceTypes.BulkImport)
			r.With(authMW.RequirePermission("manage_catalog")).Put("/{id}", h.ServiceTypes.Update)
			r.With(authMW.RequirePermission("manage_catalog")).Delete("/{id}", h.ServiceTypes.Delete)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_invoices")).Get("/", h.Invoices.List)
			r.With(authMW.RequirePermission("view_invoices")).Get("/{id}", h.Invoices.Get)
			r.With(authMW.RequirePermission("view_invoices")).Get("/number/{number}", h.Invoices.GetByNumber)
			r.With(authMW.RequirePermission("manage_invoices")).Post("/", h.Invoices.Create)
			r.With(authMW.RequirePermission("manage_invoices")).Put("/{id}", h.Invoices.Update)
			r.With(authMW.RequirePermission("manage_invoices")).Delete("/{id}", h.Invoices.Delete)
			r.With(authMW.RequirePermission("reconcile_invoices")).Post("/reconcile", h.Invoices.ReconcileAll)
			r.With(authMW.RequirePermission("reconcile_invoices")).Post("/{id}/reconcile", h.Invoices.Reconcile)
		})

		r.Route("/line-items", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_invoices")).Get("/", h.LineItems.List)
			r.With(authMW.RequirePermission("view_invoices")).Get("/{id}", h.LineItems.Get)
			r.With(authMW.RequirePermission("manage_line_items")).Post("/", h.LineItems.Create)
			r.With(authMW.RequirePermission("manage_line_items")).Put("/{id}", h.LineItems.Update)
			r.With(authMW.RequirePermission("manage_line_items")).Delete("/{id}", h.LineItems.Delete)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_alerts")).Get("/", h.Alerts.List)
			r.With(authMW.RequirePermission("view_alerts")).Get("/{id}", h.Alerts.Get)
			r.With(authMW.RequirePermission("resolve_alerts")).Post("/", h.Alerts.Create)
			r.With(authMW.RequirePermission("resolve_alerts")).Put("/{id}", h.Alerts.Update)
			r.With(authMW.RequirePermission("resolve_alerts")).Delete("/{id}", h.Alerts.Delete)
		})

		r.Route("/documents", func(r chi.Router) {
			r.With(authMW.RequirePermission("view_invoices")).Get("/", h.Documents.List)
			r.With(authMW.RequirePermission("view_invoices")).Get("/{id}", h.Documents.Get)
			r.With(authMW.RequirePermission("view_invoices")).Get("/{id}/download", h.Documents.Download)
			r.With(authMW.RequirePermission("manage_documents")).Post("/", h.Documents.Upload)
			r.With(authMW.RequirePermission("manage_documents")).Delete("/{id}", h.Documents.Delete)
		})
	})

	return r
}
