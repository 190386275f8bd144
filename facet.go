package facet

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/internal/logging"
	"github.com/carverlab/facet/internal/metrics"
	"github.com/carverlab/facet/internal/runtime"
	"github.com/carverlab/facet/pkg/adapters/memory"
	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/pmi"
	"github.com/carverlab/facet/pkg/ports"
	"github.com/carverlab/facet/pkg/session"
)

// Engine is the high-level entry point for the Facet library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	rt         *runtime.Engine
	store      ports.SessionStore
	locker     ports.DistributedLocker
	logger     *slog.Logger
	registerer prometheus.Registerer
	sessionTTL time.Duration
	lockTTL    time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore injects a custom SessionStore, bypassing the default in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker adds a distributed locker for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithMetrics registers the engine's collectors with the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// WithSessionTTL evicts idle sessions after ttl. Only applies to the default
// in-memory store; injected stores manage their own expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.sessionTTL = ttl
	}
}

// WithLockTTL bounds how long a distributed lock may outlive a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// New initializes a new Facet Engine.
// By default, it keeps sessions in memory; pass WithStore for a durable
// backend and WithLocker to coordinate replicas.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		var memOpts []memory.Option
		if eng.sessionTTL > 0 {
			memOpts = append(memOpts, memory.WithTTL(eng.sessionTTL))
		}
		eng.store = memory.NewStore(memOpts...)
	}

	var m *metrics.Metrics
	if eng.registerer != nil {
		m = metrics.New(eng.registerer)
	} else {
		m = metrics.NewNop()
	}

	rtOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithMetrics(m),
	}
	if eng.locker != nil {
		rtOpts = append(rtOpts, runtime.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		rtOpts = append(rtOpts, runtime.WithLockTTL(eng.lockTTL))
	}

	eng.rt = runtime.NewEngine(kernel.New(), eng.store, rtOpts...)
	return eng, nil
}

// MeshOptions controls tessellation density.
type MeshOptions struct {
	// LinearDeflection is the maximum chord deviation. Zero selects the default.
	LinearDeflection float64
	// AngularDeflection is the maximum angle per facet, in radians. Zero selects the default.
	AngularDeflection float64
	// Relative scales LinearDeflection by the shape's bounding box.
	Relative bool
}

// Mesh is an indexed triangle set: a flat xyz position buffer and triangle
// vertex indices into it.
type Mesh struct {
	Positions []float64 `json:"positions"`
	Indices   []int     `json:"indices"`
}

// ApplyFeature executes one feature step against a session, composing its
// partial result onto upstream. It returns the session ID (generated when
// the given one is empty) and the feature's partial result.
func (e *Engine) ApplyFeature(ctx context.Context, sessionID string, upstream model.Result, f feature.Feature) (string, model.Result, error) {
	return e.rt.ApplyFeature(ctx, sessionID, upstream, f)
}

// Mesh triangulates a registered shape for display.
func (e *Engine) Mesh(ctx context.Context, sessionID, handle string, opts MeshOptions) (Mesh, error) {
	m, err := e.rt.Mesh(ctx, sessionID, handle, kernel.MeshOptions{
		LinearDeflection:  opts.LinearDeflection,
		AngularDeflection: opts.AngularDeflection,
		Relative:          opts.Relative,
	})
	if err != nil {
		return Mesh{}, err
	}
	return Mesh{Positions: m.Positions, Indices: m.Indices}, nil
}

// ExportSTEP writes a registered shape as a STEP interchange file. The
// schema token selects the application protocol; empty means AP242.
func (e *Engine) ExportSTEP(ctx context.Context, sessionID, handle, schema string) ([]byte, error) {
	return e.rt.Export(ctx, sessionID, handle, schema)
}

// ExportSTEPWithPMI writes a registered shape as a STEP interchange file
// with datums and tolerances embedded. Annotation references resolve against
// the session's current result model.
func (e *Engine) ExportSTEPWithPMI(ctx context.Context, sessionID, handle, schema string, payload pmi.Payload) ([]byte, error) {
	return e.rt.ExportWithAnnotations(ctx, sessionID, handle, schema, payload)
}

// Sessions lists the IDs of all live sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.rt.Sessions(ctx)
}

// Session returns the stored state of a session.
func (e *Engine) Session(ctx context.Context, id string) (*session.State, error) {
	return e.rt.Session(ctx, id)
}

// DropSession removes a session and all its shapes.
func (e *Engine) DropSession(ctx context.Context, id string) error {
	return e.rt.DropSession(ctx, id)
}
