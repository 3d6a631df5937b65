package offers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Handler serves /api/offers.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public active list and the admin routes guarded
// by admin.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/active", h.active)
	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Get("/", h.list)
		r.Put("/", h.replace)
	})
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Active(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, list)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var list []Offer
	if err := httpx.DecodeJSON(r, &list); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	saved, err := h.service.Replace(r.Context(), list)
	if err != nil {
		h.logger.Warn("save offers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, saved)
}
