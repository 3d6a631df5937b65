package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Handler serves /api/settings. Every route is admin-only; the caller mounts
// it behind the guard.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.replace)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	cur, err := h.service.Get(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, cur)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	// Fields absent from the body keep their stored values.
	next, err := h.service.Get(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.DecodeJSON(r, &next); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	saved, err := h.service.Replace(r.Context(), next)
	if err != nil {
		h.logger.Warn("save settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, saved)
}
