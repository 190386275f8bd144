package runtime

import (
	"context"
	"time"

	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/internal/registry"
	"github.com/carverlab/facet/pkg/pmi"
)

// Mesh triangulates a registered shape for display.
func (e *Engine) Mesh(ctx context.Context, sessionID, handle string, opts kernel.MeshOptions) (mesh kernel.Mesh, err error) {
	start := time.Now()
	defer func() { e.observe("mesh", start, err) }()

	st, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return kernel.Mesh{}, err
	}
	reg, err := restoreRegistry(st)
	if err != nil {
		return kernel.Mesh{}, err
	}
	shape, err := reg.Resolve(handle)
	if err != nil {
		return kernel.Mesh{}, err
	}
	return e.kernel.Triangulate(shape, opts)
}

// Export writes a registered shape as an interchange file under the schema
// the token selects.
func (e *Engine) Export(ctx context.Context, sessionID, handle, schemaToken string) (data []byte, err error) {
	start := time.Now()
	defer func() { e.observe("export", start, err) }()

	st, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reg, err := restoreRegistry(st)
	if err != nil {
		return nil, err
	}
	return e.export(reg, handle, schemaToken, nil)
}

// ExportWithAnnotations writes a registered shape as an interchange file
// with its datums and tolerances embedded. Annotation references resolve
// against the session's current result model.
func (e *Engine) ExportWithAnnotations(ctx context.Context, sessionID, handle, schemaToken string, payload pmi.Payload) (data []byte, err error) {
	start := time.Now()
	defer func() { e.observe("export_annotated", start, err) }()

	st, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reg, err := restoreRegistry(st)
	if err != nil {
		return nil, err
	}

	graph, err := pmi.NewBuilder(e.logger).Build(payload, st.Current, reg)
	if err != nil {
		return nil, err
	}
	return e.export(reg, handle, schemaToken, graph)
}

func (e *Engine) export(reg *registry.Registry, handle, schemaToken string, graph *pmi.Graph) ([]byte, error) {
	shape, err := reg.Resolve(handle)
	if err != nil {
		return nil, err
	}
	schema := kernel.ResolveSchema(schemaToken)
	data, err := e.kernel.WriteInterchange(shape, schema, graph)
	if err != nil {
		return nil, err
	}
	e.metrics.ExportsTotal.WithLabelValues(schema.Name).Inc()
	return data, nil
}
