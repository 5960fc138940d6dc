package instrumentation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultMetricsAddr is the default address for the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultMetricsReadTimeout is the default read timeout for the metrics server.
	DefaultMetricsReadTimeout = 10 * time.Second

	// DefaultMetricsWriteTimeout is the default write timeout for the metrics server.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultMetricsIdleTimeout is the default idle timeout for the metrics server.
	DefaultMetricsIdleTimeout = 60 * time.Second
)

// MetricsServer serves Prometheus metrics on a dedicated port.
// This isolates metrics from the main application traffic, preventing
// unauthorized access to operational metrics.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
	endpoint   string
}

// NewMetricsServer creates a new metrics server exposing the provider's
// Prometheus metrics for scraping.
func NewMetricsServer(provider *Provider) (*MetricsServer, error) {
	if provider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}
	if !provider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}
	if !provider.HasPrometheusExporter() {
		return nil, fmt.Errorf("metrics server requires the prometheus exporter, got %q", provider.config.MetricsExporter)
	}

	addr := provider.config.MetricsAddr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	endpoint := provider.config.PrometheusEndpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}

	return &MetricsServer{
		addr:     addr,
		endpoint: endpoint,
	}, nil
}

// Start starts the metrics server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *MetricsServer) Start() error {
	mux := http.NewServeMux()

	// The OpenTelemetry prometheus exporter registers metrics to the global
	// Prometheus registry, which promhttp.Handler() exposes.
	mux.Handle(s.endpoint, promhttp.Handler())

	// Basic health check for the metrics server itself
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured address for the metrics server.
func (s *MetricsServer) Addr() string {
	return s.addr
}
