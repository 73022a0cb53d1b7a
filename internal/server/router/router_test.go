package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/stockroom/internal/gateway"
	"github.com/mamadbah2/stockroom/internal/inventory"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/repository/localstore"
	"github.com/mamadbah2/stockroom/internal/server/handlers"
)

func TestRouterServesAPIHealthAndMetrics(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	reg := metrics.NewRegistry()
	gw := gateway.New(gateway.NewLocalBackend(store, nil), reg, nil)
	svc := inventory.NewService(gw, store, nil, reg, nil)
	engine := New(handlers.NewInventoryHandler(svc, nil), nil, reg.Handler(), nil)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	if w := serve(http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := serve(http.MethodPut, "/api/products", `{"barcode":"100","name":"Pins"}`); w.Code != http.StatusOK {
		t.Fatalf("save product: %d %s", w.Code, w.Body.String())
	}
	if w := serve(http.MethodGet, "/api/products/barcode/100", ""); w.Code != http.StatusOK {
		t.Fatalf("lookup: %d %s", w.Code, w.Body.String())
	}
	if w := serve(http.MethodGet, "/api/backend/status", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("backend status: %d %s", w.Code, w.Body.String())
	}
	if w := serve(http.MethodGet, "/api/unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", w.Code)
	}

	w := serve(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"stockroom_catalog_products 1", "stockroom_gateway_calls_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestRouterWithoutMetrics(t *testing.T) {
	engine := New(handlers.NewInventoryHandler(nil, nil), nil, nil, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected /webhook to be absent, got %d", w.Code)
	}
}
