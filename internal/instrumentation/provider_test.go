package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected a no-op metrics recorder, got nil")
	}
	if provider.HasPrometheusExporter() {
		t.Error("disabled provider should not have a prometheus exporter")
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("shutdown of disabled provider should be a no-op, got %v", err)
	}
}

func TestNewProvider_NoneExporter(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: true, MetricsExporter: ExporterNone})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider with 'none' exporter to be disabled")
	}
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if !provider.HasPrometheusExporter() {
		t.Error("expected prometheus exporter to be configured")
	}
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "statsd",
	})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestNewMetricsServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		MetricsAddr:     ":9191",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	server, err := NewMetricsServer(provider)
	if err != nil {
		t.Fatalf("failed to create metrics server: %v", err)
	}
	if server.Addr() != ":9191" {
		t.Errorf("expected addr ':9191', got %q", server.Addr())
	}
}

func TestNewMetricsServer_RequiresEnabledProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if _, err := NewMetricsServer(provider); err == nil {
		t.Error("expected error for disabled provider")
	}
	if _, err := NewMetricsServer(nil); err == nil {
		t.Error("expected error for nil provider")
	}
}
