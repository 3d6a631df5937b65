package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/homebite/orderdesk/internal/auth"
	"github.com/homebite/orderdesk/internal/importer"
	"github.com/homebite/orderdesk/internal/menu"
	"github.com/homebite/orderdesk/internal/observability"
	"github.com/homebite/orderdesk/internal/offers"
	"github.com/homebite/orderdesk/internal/orders"
	reporthttp "github.com/homebite/orderdesk/internal/reports/http"
	"github.com/homebite/orderdesk/internal/settings"
)

type testAPI struct {
	handler http.Handler
	token   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("kitchen-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &Config{
		AppEnv:             "test",
		AppTimezone:        "Asia/Kolkata",
		StoreDriver:        DriverMemory,
		JWTSecret:          "router-test-secret",
		SessionTTL:         time.Hour,
		AdminEmail:         "owner@homebite.test",
		AdminPasswordHash:  string(hash),
		CORSAllowedOrigins: []string{"http://dashboard.test"},
		RateLimitPerMinute: 1000,
		MaxUploadBytes:     1 << 20,
		CacheTTL:           time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores, err := OpenStores(context.Background(), cfg, logger)
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	svc := wireServices(cfg, logger, client, stores, nil, nil, metrics)

	h := NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		Admin:           svc.auth.RequireAdmin,
		AuthHandler:     auth.NewHandler(logger, svc.auth),
		OrdersHandler:   orders.NewHandler(logger, svc.orders),
		ImportHandler:   importer.NewHandler(logger, svc.importer, svc.orders, cfg.MaxUploadBytes),
		ReportsHandler:  reporthttp.NewHandler(logger, svc.reports),
		MenuHandler:     menu.NewHandler(logger, svc.menu),
		OffersHandler:   offers.NewHandler(logger, svc.offers),
		SettingsHandler: settings.NewHandler(logger, svc.settings),
		HealthChecks: map[string]HealthCheck{"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}},
	})
	return &testAPI{handler: h}
}

func (a *testAPI) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T) {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", `{"email":"owner@homebite.test","password":"kitchen-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	a.token = body.Data.Token
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	api := newTestAPI(t)

	for _, target := range []string{"/api/orders", "/api/reports/summary", "/api/settings", "/api/offers"} {
		rec := api.do(http.MethodGet, target, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)
		require.Contains(t, rec.Body.String(), `"success":false`)
	}

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/menu", "").Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/offers/active", "").Code)
}

func TestOrderLifecycleThroughRouter(t *testing.T) {
	api := newTestAPI(t)
	api.login(t)

	rec := api.do(http.MethodPost, "/api/orders", `{"date":"2025-01-15","deliveryAddress":"A3-1206","quantity":2,"unitPrice":120,"mode":"lunch","status":"paid","paymentMode":"Cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data orders.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "HB-Jan'25-01-000001", created.Data.OrderID)
	require.Equal(t, 240.0, created.Data.Total)

	rec = api.do(http.MethodGet, "/api/orders?address=a3-1206%20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), created.Data.OrderID)

	rec = api.do(http.MethodGet, "/api/reports/summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"totalOrders":1`)

	rec = api.do(http.MethodPut, "/api/settings", `{"expensePercentage":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/reports/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"expenses":120`)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","checks":{"redis":"ok"}}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "orderdesk_http_requests_total")
}

func TestHealthReportsFailingCheck(t *testing.T) {
	h := healthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"degraded","checks":{"postgres":"connection refused","redis":"ok"}}`, rec.Body.String())
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://dashboard.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, "http://dashboard.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
