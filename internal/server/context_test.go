package server

import (
	"context"
	"testing"
)

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), nil, nil, nil, nil)

	if sc.IsShutdown() {
		t.Error("new context should not be shut down")
	}
	select {
	case <-sc.Context().Done():
		t.Error("context should not be cancelled before Shutdown")
	default:
	}

	sc.Shutdown()

	if !sc.IsShutdown() {
		t.Error("expected IsShutdown after Shutdown")
	}
	select {
	case <-sc.Context().Done():
	default:
		t.Error("context should be cancelled after Shutdown")
	}

	// Idempotent.
	sc.Shutdown()
}

func TestServerContext_NilMetricsGetsNoop(t *testing.T) {
	sc := NewServerContext(context.Background(), nil, nil, nil, nil)
	if sc.Metrics() == nil {
		t.Error("expected a no-op metrics recorder, got nil")
	}
}
