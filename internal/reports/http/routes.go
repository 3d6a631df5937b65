// Package reporthttp exposes revenue reports over HTTP.
package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// MountRoutes registers report endpoints under /api/reports.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Fail(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "too many export requests", nil)
		}),
	)

	r.Get("/summary", h.handleSummary)
	r.Get("/monthly", h.handleReport("monthly"))
	r.Get("/daily", h.handleReport("daily"))
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/summary.csv", h.handleCSV("summary"))
		gr.Get("/monthly.csv", h.handleCSV("monthly"))
		gr.Get("/daily.csv", h.handleCSV("daily"))
		gr.Get("/monthly.pdf", h.handlePDF)
	})
}
