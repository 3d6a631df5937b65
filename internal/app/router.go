package app

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/homebite/orderdesk/internal/auth"
	"github.com/homebite/orderdesk/internal/importer"
	"github.com/homebite/orderdesk/internal/menu"
	"github.com/homebite/orderdesk/internal/observability"
	"github.com/homebite/orderdesk/internal/offers"
	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/httpx"
	reporthttp "github.com/homebite/orderdesk/internal/reports/http"
	"github.com/homebite/orderdesk/internal/settings"
	"github.com/homebite/orderdesk/jobs"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	// Admin guards every write route and the private reads. Nil leaves them
	// open, which only tests do.
	Admin func(http.Handler) http.Handler

	AuthHandler     *auth.Handler
	OrdersHandler   *orders.Handler
	ImportHandler   *importer.Handler
	ReportsHandler  *reporthttp.Handler
	MenuHandler     *menu.Handler
	OffersHandler   *offers.Handler
	SettingsHandler *settings.Handler
	JobHandler      *jobs.Handler

	HealthChecks map[string]HealthCheck
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	admin := params.Admin
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/healthz", healthHandler(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		r.Route("/orders", func(r chi.Router) {
			r.Use(admin)
			if params.ImportHandler != nil {
				params.ImportHandler.MountRoutes(r)
			}
			if params.OrdersHandler != nil {
				params.OrdersHandler.MountRoutes(r)
			}
		})
		if params.ReportsHandler != nil {
			r.With(admin).Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.MenuHandler != nil {
			r.Route("/menu", func(r chi.Router) {
				params.MenuHandler.MountRoutes(r, admin)
			})
		}
		if params.OffersHandler != nil {
			r.Route("/offers", func(r chi.Router) {
				params.OffersHandler.MountRoutes(r, admin)
			})
		}
		if params.SettingsHandler != nil {
			r.With(admin).Route("/settings", params.SettingsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.With(admin).Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Not Found", "no route for "+r.Method+" "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here", nil)
	})
	return r
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler runs every check concurrently and reports 503 when any fails.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := make([]string, len(names))
		var g errgroup.Group
		for i, name := range names {
			check := checks[name]
			g.Go(func() error {
				if err := check(ctx); err != nil {
					results[i] = err.Error()
					return err
				}
				results[i] = "ok"
				return nil
			})
		}
		failed := g.Wait() != nil

		report := healthReport{Status: "ok"}
		if len(names) > 0 {
			report.Checks = make(map[string]string, len(names))
			for i, name := range names {
				report.Checks[name] = results[i]
			}
		}
		status := http.StatusOK
		if failed {
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.JSON(w, status, report)
	}
}
