package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryExposesCollectors(t *testing.T) {
	reg := NewRegistry()
	reg.GatewayCalls.WithLabelValues("sheets", "fetch_products", "ok").Inc()
	reg.MalformedRecords.WithLabelValues("mongo").Add(2)
	reg.Submits.WithLabelValues("order", "ok").Inc()
	reg.CatalogSize.Set(3)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(raw)

	for _, want := range []string{
		`stockroom_gateway_calls_total{backend="sheets",op="fetch_products",result="ok"} 1`,
		`stockroom_malformed_records_total{backend="mongo"} 2`,
		`stockroom_submits_total{kind="order",result="ok"} 1`,
		`stockroom_catalog_products 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.CatalogSize.Set(5)

	w := httptest.NewRecorder()
	b.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(w.Body.String(), "stockroom_catalog_products 5") {
		t.Fatalf("registries share state")
	}
}
