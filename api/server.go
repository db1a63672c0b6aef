/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the back-office frontend

ROUTE GROUPS:
  /api/attribute-types/*    Attribute type registry + cost schedule
  /api/subjects/*           Per-subject assignments and charges
  /api/assignments/*        Assignment mutations by id
  /api/schedule-entries/*   Price entry mutations by id
  /api/charge-runs/*        Scoped charge runs
  /api/scopes/*             Scope resolution
  /api/cabs, /api/persons, /api/shifts, /api/profiles
  /api/expense-categories, /api/revenue-categories
  /api/seed, /api/reset     Dev conveniences

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Attribute type registry and per-type cost schedule
		r.Route("/attribute-types", func(r chi.Router) {
			r.Get("/", h.ListAttributeTypes)
			r.Post("/", h.CreateAttributeType)
			r.Get("/{id}", h.GetAttributeType)
			r.Put("/{id}", h.UpdateAttributeType)
			r.Post("/{id}/deactivate", h.DeactivateAttributeType)

			r.Get("/{id}/schedule", h.ListScheduleEntries)
			r.Post("/{id}/schedule", h.CreateScheduleEntry)
			r.Get("/{id}/schedule/active", h.GetActiveScheduleEntry)
		})

		// Per-subject views: assignments and charges
		r.Route("/subjects/{kind}/{id}", func(r chi.Router) {
			r.Get("/assignments", h.ListAssignments)
			r.Get("/assignments/active", h.ListActiveAssignments)
			r.Post("/assignments", h.CreateAssignment)
			r.Get("/charges", h.GetCharges)
		})

		// Assignment mutations by id
		r.Route("/assignments", func(r chi.Router) {
			r.Put("/{id}", h.UpdateAssignment)
			r.Post("/{id}/end", h.EndAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
		})

		// Price entry mutations by id
		r.Route("/schedule-entries", func(r chi.Router) {
			r.Put("/{id}", h.UpdateScheduleEntry)
			r.Post("/{id}/end", h.EndScheduleEntry)
			r.Delete("/{id}", h.DeleteScheduleEntry)
		})

		// Scoped charge runs
		r.Route("/charge-runs", func(r chi.Router) {
			r.Post("/", h.RunCharges)
			r.Get("/latest", h.LatestChargeRun)
		})

		// Scope resolution
		r.Post("/scopes/resolve", h.ResolveScope)

		// Roster
		r.Route("/cabs", func(r chi.Router) {
			r.Get("/", h.ListCabs)
			r.Post("/", h.SaveCab)
			r.Get("/{id}", h.GetCab)
		})
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.SavePerson)
		})
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.SaveShift)
			r.Get("/{id}", h.GetShift)
		})
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.SaveProfile)
			r.Post("/{id}/members", h.AddProfileMember)
			r.Get("/{id}/shifts", h.ListProfileShifts)
		})

		// Categories
		r.Route("/expense-categories", func(r chi.Router) {
			r.Get("/", h.ListExpenseCategories)
			r.Post("/", h.SaveExpenseCategory)
		})
		r.Route("/revenue-categories", func(r chi.Router) {
			r.Get("/", h.ListRevenueCategories)
			r.Post("/", h.SaveRevenueCategory)
		})

		// Dev conveniences
		r.Post("/seed", h.SeedDemoFleet)
		r.Post("/reset", h.ResetDatabase)
	})

	// No frontend bundled; the root explains where the API lives.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Fleet Billing Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Fleet Billing Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/attribute-types">/api/attribute-types</a> - Attribute type registry</li>
<li><a href="/api/cabs">/api/cabs</a> - Cabs</li>
<li><a href="/api/shifts">/api/shifts</a> - Shifts</li>
<li><a href="/api/persons">/api/persons</a> - Owners and drivers</li>
</ul>
</body>
</html>`))
	})

	return r
}
