package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/internal/registry"
	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/geom"
	"github.com/carverlab/facet/pkg/model"
)

// ApplyFeature executes one feature step against a session.
//
// The upstream result is composed with the feature's partial result and the
// merge becomes the session's current model. The partial result alone is
// returned, matching what the caller needs to chain further steps. Session
// state is saved only after the whole step succeeds, so a failed feature
// leaves the session exactly as it was.
//
// An empty sessionID creates a new session under a generated ID, which is
// returned alongside the result.
func (e *Engine) ApplyFeature(ctx context.Context, sessionID string, upstream model.Result, f feature.Feature) (id string, built model.Result, err error) {
	start := time.Now()
	defer func() { e.observe("apply_feature", start, err) }()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	release, err := e.lockSession(ctx, sessionID)
	if err != nil {
		return "", model.Result{}, err
	}
	defer release()

	st, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		return "", model.Result{}, err
	}
	reg, err := restoreRegistry(st)
	if err != nil {
		return "", model.Result{}, err
	}

	base, err := e.kernel.BuildProfile(f.Profile)
	if err != nil {
		return "", model.Result{}, err
	}
	solid, err := e.kernel.Extrude(base, f.Axis.Scale(f.Depth))
	if err != nil {
		return "", model.Result{}, err
	}

	built = e.collect(reg, solid, f)
	merged := model.Merge(upstream, built)

	snap, err := reg.Snapshot()
	if err != nil {
		return "", model.Result{}, err
	}
	st.Counter = snap.Next
	st.Shapes = snap.Shapes
	st.Current = merged
	st.UpdatedAt = time.Now()

	if err := e.store.Save(ctx, sessionID, st); err != nil {
		return "", model.Result{}, err
	}

	e.metrics.FeaturesTotal.WithLabelValues(string(f.Kind)).Inc()
	e.logger.Info("feature applied",
		"session", sessionID,
		"feature", f.ID,
		"kind", f.Kind,
		"result", f.ResultKey,
		"selections", len(built.Selections),
	)
	return sessionID, built, nil
}

// collect registers the solid and its sub-elements and builds the partial
// result model: one named output under the feature's result key, plus a
// selection entry per solid, face, and edge with the metadata selectors
// filter on.
func (e *Engine) collect(reg *registry.Registry, solid *kernel.Solid, f feature.Feature) model.Result {
	built := model.NewResult()
	ownerHandle := reg.Register(solid)

	tags := f.Tags
	common := func(handle string) model.Meta {
		meta := model.Meta{
			model.KeyHandle:      handle,
			model.KeyOwnerHandle: ownerHandle,
			model.KeyOwnerKey:    f.ResultKey,
			model.KeyCreatedBy:   f.ID,
		}
		if len(tags) > 0 {
			meta[model.KeyFeatureTags] = tags
		}
		return meta
	}
	withCenter := func(meta model.Meta, center geom.Vec3) model.Meta {
		meta[model.KeyCenter] = center.Slice()
		meta[model.KeyCenterZ] = center.Z
		return meta
	}

	solidMeta := withCenter(common(ownerHandle), e.kernel.BoundsCenter(solid))
	solidMeta[model.KeyRole] = "body"
	built.Selections = append(built.Selections, model.Element{
		ID:   "solid",
		Kind: model.KindSolid,
		Meta: solidMeta,
	})

	for _, face := range solid.Faces() {
		handle := reg.Register(face)

		area, center, err := e.kernel.SurfaceProperties(face)
		if err != nil {
			area, center = 0, e.kernel.BoundsCenter(face)
		}
		meta := withCenter(common(handle), center)
		planar, normal := e.kernel.ClassifySurface(face)
		meta[model.KeyPlanar] = planar
		meta[model.KeyArea] = area
		if planar {
			meta[model.KeyNormalVec] = normal.Slice()
			if dir, ok := geom.SnapDirection(normal); ok {
				meta[model.KeyNormal] = string(dir)
			}
		}
		built.Selections = append(built.Selections, model.Element{
			ID:   "face",
			Kind: model.KindFace,
			Meta: meta,
		})
	}

	for _, edge := range solid.Edges() {
		handle := reg.Register(edge)
		meta := withCenter(common(handle), e.kernel.BoundsCenter(edge))
		meta[model.KeyRole] = "edge"
		built.Selections = append(built.Selections, model.Element{
			ID:   "edge",
			Kind: model.KindEdge,
			Meta: meta,
		})
	}

	built.Outputs[f.ResultKey] = model.Output{
		ID:   f.ID + ":" + f.ResultKey,
		Kind: string(model.KindSolid),
		Meta: model.Meta{
			model.KeyHandle: ownerHandle,
			model.KeyRole:   "body",
		},
	}
	return built
}
