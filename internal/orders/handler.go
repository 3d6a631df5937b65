package orders

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Handler serves the order JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the order endpoints on the /api/orders router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.deleteAll)
	r.Get("/next-id", h.nextID)
	r.Post("/bulk/status", h.bulkStatus)
	r.Post("/bulk/delete", h.bulkDelete)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.setStatus)
}

// orderID unescapes the path parameter; IDs contain an apostrophe.
func orderID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Warn("orders: "+op, slog.String("path", r.URL.Path), slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, sort, err := ParseQuery(q)
	if err != nil {
		h.fail(w, r, "parse query", err)
		return
	}
	result, err := h.service.Query(r.Context(), f, sort)
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	if q.Get("page") != "" || q.Get("perPage") != "" {
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("perPage"))
		items, p := Paginate(result, page, perPage)
		w.Header().Set("X-Total-Count", strconv.Itoa(p.Total))
		w.Header().Set("X-Total-Pages", strconv.Itoa(p.TotalPages))
		result = items
	}
	httpx.OK(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), orderID(r))
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	httpx.OK(w, http.StatusOK, o)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var p Payload
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	o, err := h.service.Create(r.Context(), p)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	httpx.OK(w, http.StatusCreated, o)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var p Payload
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	o, err := h.service.Update(r.Context(), orderID(r), p)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	httpx.OK(w, http.StatusOK, o)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), orderID(r)); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"deleted": 1})
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		httpx.Fail(w, http.StatusBadRequest, "Confirmation Required", "pass confirm=true to delete every order", nil)
		return
	}
	n, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.fail(w, r, "delete all", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"deleted": n})
}

type statusRequest struct {
	Status string `json:"status"`
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status,omitempty"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	o, err := h.service.SetStatus(r.Context(), orderID(r), req.Status)
	if err != nil {
		h.fail(w, r, "set status", err)
		return
	}
	httpx.OK(w, http.StatusOK, o)
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	n, err := h.service.BulkSetStatus(r.Context(), req.IDs, req.Status)
	if err != nil {
		h.fail(w, r, "bulk status", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid JSON", err.Error(), nil)
		return
	}
	n, err := h.service.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, r, "bulk delete", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *Handler) nextID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	date, ok := ParseDateString(raw)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Validation Failed", "a valid date is required", map[string]string{"date": "invalid date"})
		return
	}
	id, err := h.service.NextID(r.Context(), date)
	if err != nil {
		h.fail(w, r, "next id", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]string{"orderId": id})
}
