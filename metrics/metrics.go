// Package metrics exposes the engine's operational counters and the
// standalone /metrics endpoint served next to the API.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the settlement engine.
type Metrics struct {
	registry *prometheus.Registry

	AuctionsCreated    prometheus.Counter
	AuctionsSettled    prometheus.Counter
	SettlementFailures *prometheus.CounterVec
	FeesCollected      prometheus.Counter
}

// New creates a registry with all engine collectors registered under the
// given namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AuctionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auctions_created_total",
			Help:      "Total number of auctions created.",
		}),
		AuctionsSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auctions_settled_total",
			Help:      "Total number of auctions settled by a buy.",
		}),
		SettlementFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_failures_total",
			Help:      "Rejected buy attempts by failure reason.",
		}, []string{"reason"}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_total",
			Help:      "Sum of protocol fees retained, in base units.",
		}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MetricsServer serves /metrics on its own listener, separate from the API
// server so scrapes are unaffected by API drain.
type MetricsServer struct {
	srv *http.Server
}

// NewServer creates a metrics server for the given address.
func NewServer(m *Metrics, addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
	}
}

// ListenAndServe blocks serving metrics until Shutdown.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
