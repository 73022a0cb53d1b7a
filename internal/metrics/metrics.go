package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors exported on /metrics.
type Registry struct {
	reg              *prometheus.Registry
	GatewayCalls     *prometheus.CounterVec
	MalformedRecords *prometheus.CounterVec
	LedgerFailures   *prometheus.CounterVec
	Submits          *prometheus.CounterVec
	CatalogSize      prometheus.Gauge
}

// NewRegistry registers the collectors on a private registry so tests can build
// as many as they need.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_gateway_calls_total",
		Help: "Sync gateway calls by backend, operation and result.",
	}, []string{"backend", "op", "result"})
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_malformed_records_total",
		Help: "Records skipped because they could not be decoded.",
	}, []string{"backend"})
	ledger := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_ledger_failures_total",
		Help: "Best-effort ledger writes that failed.",
	}, []string{"backend", "kind"})
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_submits_total",
		Help: "Order and stocktake submissions by result.",
	}, []string{"kind", "result"})
	size := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_catalog_products",
		Help: "Products currently held in the catalog.",
	})

	r.MustRegister(calls, malformed, ledger, submits, size)

	return &Registry{
		reg:              r,
		GatewayCalls:     calls,
		MalformedRecords: malformed,
		LedgerFailures:   ledger,
		Submits:          submits,
		CatalogSize:      size,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
