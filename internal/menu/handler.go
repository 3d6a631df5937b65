package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Handler serves /api/menu.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers public reads and admin writes. admin guards the
// write routes; nil leaves them open.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/items", h.items)
	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Put("/", h.replace)
		r.Put("/items", h.replaceItems)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, cats)
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, items)
}

// replaceRequest accepts either the grouped menu or categories plus a flat
// item list from the editor.
type replaceRequest struct {
	Categories []Category `json:"categories"`
	Items      []Item     `json:"items"`
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	var req replaceRequest
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &req.Categories)
	} else {
		err = json.Unmarshal(trimmed, &req)
	}
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}

	var cats []Category
	if req.Items != nil {
		cats, err = h.service.save(r.Context(), Reconstruct(req.Categories, req.Items))
	} else {
		cats, err = h.service.Replace(r.Context(), req.Categories)
	}
	if err != nil {
		h.logger.Warn("save menu", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, cats)
}

func (h *Handler) replaceItems(w http.ResponseWriter, r *http.Request) {
	var items []Item
	if err := httpx.DecodeJSON(r, &items); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	cats, err := h.service.ReplaceItems(r.Context(), items)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, cats)
}
