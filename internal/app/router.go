package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rentfolio/rentfolio/internal/applications"
	"github.com/rentfolio/rentfolio/internal/auth"
	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/maintenance"
	"github.com/rentfolio/rentfolio/internal/observability"
	"github.com/rentfolio/rentfolio/internal/properties"
	"github.com/rentfolio/rentfolio/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Auth   *auth.Service
	Gate   authz.Middleware

	AdminAuthHandler    *auth.Handler
	LandlordAuthHandler *auth.Handler
	PropertiesHandler   *properties.Handler
	ApplicationsHandler *applications.Handler
	MaintenanceHandler  *maintenance.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router. The API is split into two role-scoped
// consoles under /api/admin and /api/landlord; each mounts its own auth
// endpoints, and everything past auth requires the console's role signal.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.Auth,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/admin", func(r chi.Router) {
		params.mountConsole(r, authz.ConsoleAdmin, params.AdminAuthHandler)
	})
	r.Route("/api/landlord", func(r chi.Router) {
		params.mountConsole(r, authz.ConsoleLandlord, params.LandlordAuthHandler)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func (p RouterParams) mountConsole(r chi.Router, console authz.Console, authHandler *auth.Handler) {
	if authHandler != nil {
		r.Route("/auth", authHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(p.Gate.RequireConsole(console))
		if p.PropertiesHandler != nil {
			r.Route("/properties", p.PropertiesHandler.MountRoutes)
		}
		if p.ApplicationsHandler != nil {
			r.Route("/applications", p.ApplicationsHandler.MountRoutes)
		}
		if p.MaintenanceHandler != nil {
			r.Route("/maintenance", p.MaintenanceHandler.MountRoutes)
		}
	})
}
