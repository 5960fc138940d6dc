package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrPlatform  = "platform"
	attrTool      = "tool"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics (relay server)
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Meeting lifecycle metrics
	meetingOperationsTotal metric.Int64Counter
	conflictsDetectedTotal metric.Int64Counter
	storedMeetings         metric.Int64UpDownCounter

	// External API metrics (Gmail send, Zoom meeting creation)
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	// Invite dispatch metrics
	invitesSentTotal metric.Int64Counter

	// OAuth metrics
	oauthAuthTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.meetingOperationsTotal, err = meter.Int64Counter(
		"meeting_operations_total",
		metric.WithDescription("Total number of meeting schedule/update/delete operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_operations_total counter: %w", err)
	}

	m.conflictsDetectedTotal, err = meter.Int64Counter(
		"meeting_conflicts_detected_total",
		metric.WithDescription("Total number of scheduling conflicts detected"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_conflicts_detected_total counter: %w", err)
	}

	m.storedMeetings, err = meter.Int64UpDownCounter(
		"stored_meetings",
		metric.WithDescription("Number of meetings currently stored"),
		metric.WithUnit("{meeting}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stored_meetings gauge: %w", err)
	}

	m.apiOperationsTotal, err = meter.Int64Counter(
		"external_api_operations_total",
		metric.WithDescription("Total number of external API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create external_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"external_api_operation_duration_seconds",
		metric.WithDescription("External API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create external_api_operation_duration_seconds histogram: %w", err)
	}

	m.invitesSentTotal, err = meter.Int64Counter(
		"invites_sent_total",
		metric.WithDescription("Total number of meeting invite emails sent"),
		metric.WithUnit("{invite}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invites_sent_total counter: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordMeetingOperation records a meeting lifecycle operation.
//
// Parameters:
//   - operation: Operation type (schedule, update, delete)
//   - platform: Conferencing platform (zoom, teams, meet)
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordMeetingOperation(ctx context.Context, operation, platform, status string) {
	if m.meetingOperationsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrPlatform, platform),
		attribute.String(attrStatus, status),
	}

	m.meetingOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConflictDetected records a detected scheduling conflict.
func (m *Metrics) RecordConflictDetected(ctx context.Context) {
	if m.conflictsDetectedTotal == nil {
		return // Instrumentation not initialized
	}

	m.conflictsDetectedTotal.Add(ctx, 1)
}

// AddStoredMeetings adjusts the stored meetings gauge by delta.
func (m *Metrics) AddStoredMeetings(ctx context.Context, delta int64) {
	if m.storedMeetings == nil {
		return // Instrumentation not initialized
	}

	m.storedMeetings.Add(ctx, delta)
}

// RecordAPIOperation records an external API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: External service name (gmail, zoom)
//   - operation: Operation type (send, create_meeting, exchange_token, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.apiOperationsTotal == nil || m.apiOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.apiOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordInviteSent records a single invite dispatch attempt with result.
// Result should be one of: "success", "error"
func (m *Metrics) RecordInviteSent(ctx context.Context, status string) {
	if m.invitesSentTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.invitesSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an OAuth authentication attempt with service and result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, service, result string) {
	if m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrResult, result),
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocationWithAccount records an MCP tool invocation with account info.
// The account label is only included when detailedLabels is enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
