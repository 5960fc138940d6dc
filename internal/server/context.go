package server

import (
	"context"
	"sync"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/scheduler"
	"github.com/example/meeting-scheduler/internal/session"
	"github.com/example/meeting-scheduler/internal/store"
)

// ServerContext holds the shared dependencies for the MCP server: the
// meeting store, both provider sessions and the orchestration layer.
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	store     *store.Store
	sessions  *session.Manager
	scheduler *scheduler.Scheduler
	metrics   *instrumentation.Metrics
	mu        sync.RWMutex
	shutdown  bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, st *store.Store, sessions *session.Manager, sched *scheduler.Scheduler, metrics *instrumentation.Metrics) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		store:     st,
		sessions:  sessions,
		scheduler: sched,
		metrics:   metrics,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the meeting store.
func (sc *ServerContext) Store() *store.Store {
	return sc.store
}

// Sessions returns the provider session manager.
func (sc *ServerContext) Sessions() *session.Manager {
	return sc.sessions
}

// Scheduler returns the orchestration layer.
func (sc *ServerContext) Scheduler() *scheduler.Scheduler {
	return sc.scheduler
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Shutdown marks the server context as shutting down and cancels its
// context.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}

// IsShutdown reports whether the server context is shutting down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
