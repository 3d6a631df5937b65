package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/orders"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func newTestRouter(t *testing.T, maxBytes int64, seed ...orders.Order) (http.Handler, *orders.MemoryRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := orders.NewMemoryRepository(seed...)
	store := orders.NewService(repo, nil, orders.NewValidator(time.UTC), logger)
	h := NewHandler(logger, NewService(store, nil, nil, logger), store, maxBytes)

	r := chi.NewRouter()
	r.Route("/api/orders", func(r chi.Router) {
		h.MountRoutes(r)
		orders.NewHandler(logger, store).MountRoutes(r)
	})
	return r, repo
}

func postFile(t *testing.T, h http.Handler, target string, u Upload, opts Options) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	body, contentType, err := encodeUpload(u, opts)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHandlerUploadImports(t *testing.T) {
	h, repo := newTestRouter(t, 0)

	rec, env := postFile(t, h, "/api/orders/upload-excel", csvUpload(
		",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,",
	), DefaultOptions)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var sum Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	require.Equal(t, 1, sum.Imported)
	require.Equal(t, 1, sum.Total)

	list, _ := repo.List(t.Context())
	require.Len(t, list, 1)
}

func TestHandlerUploadRejectsMissingColumns(t *testing.T) {
	h, _ := newTestRouter(t, 0)
	up := Upload{Filename: "orders.csv", Data: []byte("Date,Delivery Address,Quantity,Mode,Status,Payment Mode\n2025-01-15,A3-1206,2,Lunch,Paid,Cash\n")}

	rec, env := postFile(t, h, "/api/orders/upload-excel", up, DefaultOptions)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "Missing required columns: Unit Price", env.Message)
}

func TestHandlerUploadReportsInterruptedBatch(t *testing.T) {
	h, repo := newTestRouter(t, 0)
	body, contentType, err := encodeUpload(csvUpload(",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,"), DefaultOptions)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/upload-excel", body).WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestTimeout, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.False(t, env.Success)
	require.Equal(t, "Import Interrupted", env.Error)

	var sum Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	require.Equal(t, 1, sum.Total)
	require.Zero(t, sum.Imported)
	require.NotEmpty(t, sum.BatchID)

	list, _ := repo.List(context.Background())
	require.Empty(t, list)
}

func TestHandlerUploadTooLarge(t *testing.T) {
	h, _ := newTestRouter(t, 128)
	up := csvUpload(strings.Repeat(",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,\n", 20))

	rec, env := postFile(t, h, "/api/orders/upload-excel", up, DefaultOptions)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.False(t, env.Success)
}

func TestHandlerPreview(t *testing.T) {
	h, repo := newTestRouter(t, 0)

	rec, env := postFile(t, h, "/api/orders/import/preview", csvUpload(
		",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,",
		",32-01-2025,B2-404,2,120,Lunch,Paid,Cash,,,,",
	), DefaultOptions)
	require.Equal(t, http.StatusOK, rec.Code)

	var p Preview
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.False(t, p.CanUpload)
	require.Equal(t, []string{`Row 3: invalid date "32-01-2025"`}, p.Errors)

	list, _ := repo.List(t.Context())
	require.Empty(t, list)
}

func TestHandlerExportAndTemplate(t *testing.T) {
	h, _ := newTestRouter(t, 0, existingOrder())

	req := httptest.NewRequest(http.MethodGet, "/api/orders/export.csv?status=Unpaid", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "\ufeffOrder ID,Date,Delivery Address"))
	require.Contains(t, body, "HB-Jan'25-01-000012,2025-01-10,A3-1206,1,100,Lunch,Unpaid,Cash,1,2025,,\r\n")

	req = httptest.NewRequest(http.MethodGet, "/api/orders/template.csv", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	sheet, err := Parse("template.csv", "", rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, TemplateColumns, sheet.Headers)
	require.Empty(t, BuildPreview(sheet).Errors)
}

func TestExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	o := existingOrder()
	o.DeliveryAddress = "A3-1206, Tower \"B\""
	require.NoError(t, WriteOrdersCSV(&buf, []orders.Order{o}))

	sheet, err := Parse("export.csv", "", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, o.DeliveryAddress, ResolveColumns(sheet.Headers).Cell(sheet.Rows[0].Cells, ColAddress))
}
