// Package instrumentation provides OpenTelemetry instrumentation for the
// meeting scheduler.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Meeting Lifecycle Metrics:
//   - meeting_operations_total: Counter of schedule/update/delete operations by platform and status
//   - meeting_conflicts_detected_total: Counter of detected scheduling conflicts
//   - stored_meetings: Gauge of meetings currently stored
//
// External API Metrics:
//   - external_api_operations_total: Counter of Gmail/Zoom operations by service, operation, status
//   - external_api_operation_duration_seconds: Histogram of external API operation durations
//   - invites_sent_total: Counter of invite emails by result
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by service and result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Configuration is environment-driven via DefaultConfig:
//   - OTEL_SERVICE_NAME: Service name (default: meetsched)
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Exporter type, "prometheus", "stdout", or "none" (default: prometheus)
//   - METRICS_ADDR: Dedicated metrics server address (default: :9090)
//   - PROMETHEUS_ENDPOINT: Metrics endpoint path (default: /metrics)
//   - METRICS_DETAILED_LABELS: Include high-cardinality labels (default: false)
package instrumentation
