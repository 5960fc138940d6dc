package instrumentation

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	// Clear environment to get defaults
	os.Unsetenv("OTEL_SERVICE_NAME")
	os.Unsetenv("INSTRUMENTATION_ENABLED")
	os.Unsetenv("METRICS_EXPORTER")
	os.Unsetenv("METRICS_ADDR")

	config := DefaultConfig()

	if config.ServiceName != "meetsched" {
		t.Errorf("expected ServiceName 'meetsched', got %q", config.ServiceName)
	}

	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}

	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}

	if config.MetricsAddr != DefaultMetricsAddr {
		t.Errorf("expected MetricsAddr %q, got %q", DefaultMetricsAddr, config.MetricsAddr)
	}

	if config.PrometheusEndpoint != "/metrics" {
		t.Errorf("expected PrometheusEndpoint '/metrics', got %q", config.PrometheusEndpoint)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	os.Setenv("OTEL_SERVICE_NAME", "test-service")
	os.Setenv("INSTRUMENTATION_ENABLED", "false")
	os.Setenv("METRICS_EXPORTER", "stdout")
	os.Setenv("METRICS_ADDR", ":9999")

	defer func() {
		os.Unsetenv("OTEL_SERVICE_NAME")
		os.Unsetenv("INSTRUMENTATION_ENABLED")
		os.Unsetenv("METRICS_EXPORTER")
		os.Unsetenv("METRICS_ADDR")
	}()

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}

	if config.Enabled {
		t.Error("expected Enabled to be false")
	}

	if config.MetricsExporter != "stdout" {
		t.Errorf("expected MetricsExporter 'stdout', got %q", config.MetricsExporter)
	}

	if config.MetricsAddr != ":9999" {
		t.Errorf("expected MetricsAddr ':9999', got %q", config.MetricsAddr)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:        "valid prometheus exporter",
			config:      Config{MetricsExporter: ExporterPrometheus},
			expectError: false,
		},
		{
			name:        "valid stdout exporter",
			config:      Config{MetricsExporter: ExporterStdout},
			expectError: false,
		},
		{
			name:        "valid none exporter",
			config:      Config{MetricsExporter: ExporterNone},
			expectError: false,
		},
		{
			name:        "empty exporter is allowed",
			config:      Config{},
			expectError: false,
		},
		{
			name:        "invalid exporter",
			config:      Config{MetricsExporter: "statsd"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
