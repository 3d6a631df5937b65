package reporthttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/homebite/orderdesk/internal/platform/httpx"
	"github.com/homebite/orderdesk/internal/reports"
	"github.com/homebite/orderdesk/internal/reports/export"
)

const requestTimeout = 5 * time.Second

// ReportService is the report contract used by the handler.
type ReportService interface {
	Summary(ctx context.Context, req reports.Request) (reports.Summary, error)
	Monthly(ctx context.Context, req reports.Request) (reports.Report, error)
	Daily(ctx context.Context, req reports.Request) (reports.Report, error)
}

// Handler serves revenue reports and their CSV and PDF exports.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{logger: logger, service: service, now: time.Now}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) request(w http.ResponseWriter, r *http.Request) (reports.Request, bool) {
	req, err := reports.ParseRequest(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return reports.Request{}, false
	}
	return req, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	s, err := h.service.Summary(ctx, req)
	if err != nil {
		h.handleServerError(w, "load summary", err)
		return
	}
	httpx.OK(w, http.StatusOK, s)
}

func (h *Handler) loadReport(ctx context.Context, kind string, req reports.Request) (reports.Report, error) {
	if kind == "daily" {
		return h.service.Daily(ctx, req)
	}
	return h.service.Monthly(ctx, req)
}

func (h *Handler) handleReport(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.request(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		rep, err := h.loadReport(ctx, kind, req)
		if err != nil {
			h.handleServerError(w, "load "+kind+" report", err)
			return
		}
		httpx.OK(w, http.StatusOK, rep)
	}
}

func (h *Handler) handleCSV(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.request(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		buf := h.bufPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer func() {
			buf.Reset()
			h.bufPool.Put(buf)
		}()

		if kind == "summary" {
			s, err := h.service.Summary(ctx, req)
			if err != nil {
				h.handleServerError(w, "load summary", err)
				return
			}
			if err := export.WriteSummaryCSV(buf, s); err != nil {
				h.handleServerError(w, "write summary csv", err)
				return
			}
		} else {
			rep, err := h.loadReport(ctx, kind, req)
			if err != nil {
				h.handleServerError(w, "load "+kind+" report", err)
				return
			}
			if err := export.WriteReportCSV(buf, rep); err != nil {
				h.handleServerError(w, "write "+kind+" csv", err)
				return
			}
		}
		h.stream(w, "text/csv; charset=utf-8", h.filename(kind, "csv"), buf)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rep, err := h.service.Monthly(ctx, req)
	if err != nil {
		h.handleServerError(w, "load monthly report", err)
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	doc := export.ReportPDF{
		Title:       "Monthly Revenue Report",
		Subtitle:    describe(req),
		GeneratedAt: h.now(),
		Report:      rep,
	}
	if err := export.WriteReportPDF(buf, doc); err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}
	h.stream(w, "application/pdf", h.filename("monthly", "pdf"), buf)
}

func (h *Handler) filename(kind, ext string) string {
	return fmt.Sprintf("orders-%s-%s.%s", kind, h.now().UTC().Format("20060102"), ext)
}

func (h *Handler) stream(w http.ResponseWriter, contentType, filename string, body io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := io.Copy(w, body); err != nil {
		h.logError("stream export", err)
	}
}

// describe renders the active filters for report headings.
func describe(req reports.Request) string {
	var parts []string
	f := req.Filter
	if f.BillingMonth > 0 {
		parts = append(parts, fmt.Sprintf("month %d", f.BillingMonth))
	}
	if f.BillingYear > 0 {
		parts = append(parts, fmt.Sprintf("year %d", f.BillingYear))
	}
	if f.Mode != "" {
		parts = append(parts, "mode "+f.Mode)
	}
	if f.Status != "" {
		parts = append(parts, "status "+f.Status)
	}
	if f.Address != "" {
		parts = append(parts, "address \""+f.Address+"\"")
	}
	if len(parts) == 0 {
		return "All orders"
	}
	return "Filtered by " + strings.Join(parts, ", ")
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logError(action, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(action string, err error) {
	if h.logger != nil {
		h.logger.Error("reports handler error", slog.String("action", action), slog.Any("error", err))
	}
}
