package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Handler serves the import and export endpoints under /api/orders.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	orders   *orders.Service
	maxBytes int64
}

// NewHandler constructs a Handler. maxBytes caps the upload size.
func NewHandler(logger *slog.Logger, service *Service, orderService *orders.Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{logger: logger, service: service, orders: orderService, maxBytes: maxBytes}
}

// MountRoutes registers the file endpoints on the /api/orders router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/import/preview", h.preview)
	r.Post("/upload-excel", h.upload)
	r.Get("/template.csv", h.template)
	r.Get("/export.csv", h.export)
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Upload{}, fmt.Errorf("file exceeds %d bytes: %w", h.maxBytes, httpx.ErrTooLarge)
		}
		return Upload{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return Upload{}, fmt.Errorf("%w: file field is required", httpx.ErrValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	return Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	u, err := h.readUpload(w, r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Preview(u)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	u, err := h.readUpload(w, r)
	if err != nil {
		h.logger.Warn("import upload rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	opts, err := ParseOptions(r.FormValue("options"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sum, err := h.service.Import(r.Context(), u, opts)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		httpx.JSON(w, http.StatusRequestTimeout, httpx.ErrorBody{
			Error:   "Import Interrupted",
			Message: err.Error(),
			Data:    sum,
		})
		return
	}
	if err != nil {
		h.logger.Warn("import failed", slog.String("file", u.Filename), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, sum)
}

func (h *Handler) template(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders-template.csv"`)
	if err := WriteTemplateCSV(w); err != nil {
		h.logger.Error("write template", slog.Any("error", err))
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	f, sort, err := orders.ParseQuery(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.orders.Query(r.Context(), f, sort)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	name := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := WriteOrdersCSV(w, list); err != nil {
		h.logger.Error("write export", slog.Any("error", err))
	}
}
