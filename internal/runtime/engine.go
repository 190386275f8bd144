// Package runtime is the core modeling engine: it applies features to
// sessions, serves meshes and interchange exports, and keeps session state
// consistent across concurrent callers.
package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/internal/logging"
	"github.com/carverlab/facet/internal/metrics"
	"github.com/carverlab/facet/internal/registry"
	"github.com/carverlab/facet/pkg/ports"
	"github.com/carverlab/facet/pkg/session"
)

// Engine executes modeling operations against persisted sessions.
type Engine struct {
	kernel  *kernel.Kernel
	store   ports.SessionStore
	locker  ports.DistributedLocker
	metrics *metrics.Metrics
	logger  *slog.Logger
	lockTTL time.Duration

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

// Option configures the engine.
type Option func(*Engine)

// WithLocker adds distributed locking for multi-replica deployments. The
// in-process mutex still applies; the locker extends it across instances.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithMetrics sets the engine's instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLockTTL bounds how long a distributed lock may outlive a crashed
// holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.lockTTL = ttl }
}

// NewEngine creates an engine over the given kernel and session store.
func NewEngine(k *kernel.Kernel, store ports.SessionStore, opts ...Option) *Engine {
	e := &Engine{
		kernel:  k,
		store:   store,
		logger:  logging.NewNop(),
		lockTTL: 30 * time.Second,
		local:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewNop()
	}
	return e
}

func (e *Engine) sessionMutex(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	mu, ok := e.local[id]
	if !ok {
		mu = &sync.Mutex{}
		e.local[id] = mu
	}
	return mu
}

// lockSession serializes access to one session. It always takes the
// in-process mutex; when a distributed locker is configured it is acquired
// on top, so replicas are excluded too.
func (e *Engine) lockSession(ctx context.Context, id string) (release func(), err error) {
	mu := e.sessionMutex(id)
	mu.Lock()

	if e.locker == nil {
		return mu.Unlock, nil
	}

	unlock, err := e.locker.Lock(ctx, id, e.lockTTL)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	return func() {
		// Release even if the request context is already done.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release distributed lock", "session", id, "error", err)
		}
		mu.Unlock()
	}, nil
}

// loadOrCreate returns the stored state for the session, or a fresh one if
// none exists yet. Sessions come into being on first use.
func (e *Engine) loadOrCreate(ctx context.Context, id string) (*session.State, error) {
	st, err := e.store.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return session.New(id), nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// restoreRegistry rebuilds the session's handle registry from its snapshot.
func restoreRegistry(st *session.State) (*registry.Registry, error) {
	return registry.Restore(registry.Snapshot{Next: st.Counter, Shapes: st.Shapes})
}

// observe records operation duration and outcome.
func (e *Engine) observe(op string, start time.Time, err error) {
	e.metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.OpErrors.WithLabelValues(op).Inc()
	}
}

// Sessions lists the IDs of all live sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// Session returns the stored state of a session.
func (e *Engine) Session(ctx context.Context, id string) (*session.State, error) {
	return e.store.Load(ctx, id)
}

// DropSession removes a session and all its shapes.
func (e *Engine) DropSession(ctx context.Context, id string) error {
	release, err := e.lockSession(ctx, id)
	if err != nil {
		return err
	}
	defer release()
	return e.store.Delete(ctx, id)
}
