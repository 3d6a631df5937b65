package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/docstore"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func newRouter(admin func(http.Handler) http.Handler) (http.Handler, *Service) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(docstore.NewMemory(), logger)
	r := chi.NewRouter()
	r.Route("/api/menu", func(r chi.Router) {
		NewHandler(logger, svc).MountRoutes(r, admin)
	})
	return r, svc
}

func send(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, &buf))
	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestPutMenuAssignsIDsAndValidates(t *testing.T) {
	h, svc := newRouter(nil)

	rec, env := send(t, h, http.MethodPut, "/api/menu/", []Category{
		{Category: "Thali", Items: []Item{{Name: "Veg Thali", Price: 120}}},
		{Category: "thali", Items: []Item{{Name: "Mini Thali", Price: 90}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cats []Category
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 1)
	require.NotEmpty(t, cats[0].ID)
	require.Len(t, cats[0].Items, 2)
	require.NotEmpty(t, cats[0].Items[1].ID)

	stored, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, cats, stored)

	rec, env = send(t, h, http.MethodPut, "/api/menu/", []Category{
		{Category: "Bad", Items: []Item{{Name: "", Price: -1}}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, env.Fields, "categories[0].items[0].name")
	require.Contains(t, env.Fields, "categories[0].items[0].price")
}

func TestPutMenuFromEditorItems(t *testing.T) {
	h, _ := newRouter(nil)

	rec, env := send(t, h, http.MethodPut, "/api/menu/", map[string]any{
		"categories": []Category{{ID: "c1", Category: "Thali", Icon: "🍛"}},
		"items":      []Item{{Name: "Veg Thali", Price: 120, Category: "Thali"}, {Name: "Tea", Price: 10, Category: "Drinks"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cats []Category
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 2)
	require.Equal(t, "🍛", cats[0].Icon)
	require.Equal(t, UncategorizedName, cats[1].Category)

	rec, env = send(t, h, http.MethodGet, "/api/menu/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
}

func TestMenuWritesAreGuarded(t *testing.T) {
	h, _ := newRouter(denyAll)

	rec, _ := send(t, h, http.MethodPut, "/api/menu/", []Category{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := send(t, h, http.MethodGet, "/api/menu/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, string(env.Data))
}
