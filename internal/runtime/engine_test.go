package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/pkg/adapters/memory"
	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/geom"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/pmi"
	"github.com/carverlab/facet/pkg/selector"
	"github.com/carverlab/facet/pkg/session"
)

func newTestEngine() (*Engine, *memory.Store) {
	store := memory.NewStore()
	return NewEngine(kernel.New(), store), store
}

func baseBlock(id string) feature.Feature {
	return feature.Feature{
		ID:   id,
		Kind: feature.KindExtrude,
		Profile: feature.Rectangle{
			Width:  10,
			Height: 10,
			Center: geom.Vec3{X: 5, Y: 5},
		},
		Axis:      geom.Vec3{Z: 1},
		Depth:     5,
		ResultKey: feature.DefaultResultKey,
	}
}

func TestApplyFeature(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	id, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	// One solid, six faces, twelve edges.
	require.Len(t, built.Selections, 19)

	out, ok := built.Outputs["body:main"]
	require.True(t, ok)
	assert.Equal(t, "F1:body:main", out.ID)
	assert.Equal(t, "body", out.Meta.String(model.KeyRole))
	assert.Equal(t, "shape:1", out.Meta.String(model.KeyHandle))

	solid := built.Selections[0]
	assert.Equal(t, model.KindSolid, solid.Kind)
	assert.Equal(t, "body", solid.Meta.String(model.KeyRole))
	assert.Equal(t, "F1", solid.Meta.String(model.KeyCreatedBy))
	assert.Equal(t, "body:main", solid.Meta.String(model.KeyOwnerKey))

	top, err := selector.Resolve(selector.Selector{
		Class: selector.ClassFace,
		Predicates: []selector.Predicate{
			selector.Planar{},
			selector.NormalIs{Direction: geom.PlusZ},
		},
		Rank: []selector.Rank{selector.MaxArea{}},
	}, built)
	require.NoError(t, err)
	assert.Equal(t, 100.0, top.Meta.Float(model.KeyArea))
	assert.Equal(t, 5.0, top.Meta.Float(model.KeyCenterZ))
}

func TestApplyFeaturePersistsMerge(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	_, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)
	assert.Len(t, st.Current.Selections, len(built.Selections))
	assert.Equal(t, 19, st.Counter, "every registered shape consumes a handle")
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestApplyFeatureGeneratesSessionID(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	id, _, err := e.ApplyFeature(ctx, "", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.Load(ctx, id)
	assert.NoError(t, err)
}

func TestApplyFeatureAtomicity(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	_, _, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	before, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	bad := baseBlock("F2")
	bad.Profile = feature.Rectangle{Width: -1, Height: 5}
	_, _, err = e.ApplyFeature(ctx, "s1", before.Current, bad)
	var invalid *feature.InvalidProfileError
	require.ErrorAs(t, err, &invalid)

	after, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, before.Counter, after.Counter, "failed step must not consume handles")
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "failed step must not touch the session")
}

func TestApplyFeatureChaining(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	_, first, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)

	post := baseBlock("F2")
	post.ResultKey = "body:boss"
	post.Profile = feature.Circle{Radius: 2, Center: geom.Vec3{X: 5, Y: 5}}
	_, _, err = e.ApplyFeature(ctx, "s1", first, post)
	require.NoError(t, err)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	// Both bodies coexist: 19 elements from the block, 6 from the cylinder.
	assert.Len(t, st.Current.Selections, 25)
	assert.Len(t, st.Current.Outputs, 2)

	// Provenance separates the two features' faces.
	sel := selector.Selector{
		Class: selector.ClassFace,
		Predicates: []selector.Predicate{
			selector.Planar{},
			selector.NormalIs{Direction: geom.PlusZ},
			selector.CreatedBy{FeatureID: "F2"},
		},
	}
	top, err := selector.Resolve(sel, st.Current)
	require.NoError(t, err)
	assert.Equal(t, "F2", top.Meta.String(model.KeyCreatedBy))
	assert.Equal(t, "body:boss", top.Meta.String(model.KeyOwnerKey))
}

func TestApplyFeatureSupersedesResultKey(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	_, first, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)

	// Same result key: the new body replaces the old one's selections.
	_, _, err = e.ApplyFeature(ctx, "s1", first, baseBlock("F2"))
	require.NoError(t, err)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, st.Current.Selections, 19)
	for _, el := range st.Current.Selections {
		assert.Equal(t, "F2", el.Meta.String(model.KeyCreatedBy))
	}
	assert.Equal(t, "F2:body:main", st.Current.Outputs["body:main"].ID)
}

func TestMesh(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	handle := built.Outputs["body:main"].Meta.String(model.KeyHandle)

	mesh, err := e.Mesh(ctx, "s1", handle, kernel.MeshOptions{})
	require.NoError(t, err)
	assert.Equal(t, 12, len(mesh.Indices)/3)

	_, err = e.Mesh(ctx, "s1", "shape:999", kernel.MeshOptions{})
	assert.Error(t, err)

	_, err = e.Mesh(ctx, "missing", handle, kernel.MeshOptions{})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestExport(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	handle := built.Outputs["body:main"].Meta.String(model.KeyHandle)

	data, err := e.Export(ctx, "s1", handle, "ap203")
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "ISO-10303-21;")
	assert.Contains(t, out, "CONFIG_CONTROL_DESIGN")
	assert.Contains(t, out, "MANIFOLD_SOLID_BREP")
}

func TestExportWithAnnotations(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	handle := built.Outputs["body:main"].Meta.String(model.KeyHandle)

	faceRef := func(dir geom.Direction) pmi.Ref {
		return pmi.Ref{
			Kind: pmi.RefSurface,
			Selector: selector.Selector{
				Class: selector.ClassFace,
				Predicates: []selector.Predicate{
					selector.NormalIs{Direction: dir},
				},
			},
		}
	}
	payload := pmi.Payload{
		Datums: []pmi.DatumSpec{
			{ID: "A", Target: faceRef(geom.MinusZ)},
		},
		Constraints: []pmi.ConstraintSpec{
			{
				Kind:      "constraint.flatness",
				Tolerance: 0.05,
				Target:    faceRef(geom.PlusZ),
				DatumRefs: []string{"A"},
			},
		},
	}

	data, err := e.ExportWithAnnotations(ctx, "s1", handle, "", payload)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "DATUM('A','A'")
	assert.Contains(t, out, "FLATNESS_TOLERANCE")
	assert.True(t, strings.Contains(out, "AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF"))
}

func TestExportWithAnnotationsFailsFast(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, built, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	handle := built.Outputs["body:main"].Meta.String(model.KeyHandle)

	payload := pmi.Payload{
		Datums: []pmi.DatumSpec{
			{
				ID:        "A",
				Modifiers: []string{"BOGUS"},
				Target: pmi.Ref{
					Kind:     pmi.RefSurface,
					Selector: selector.Selector{Class: selector.ClassFace},
				},
			},
		},
	}
	_, err = e.ExportWithAnnotations(ctx, "s1", handle, "", payload)
	var unknown *pmi.UnknownModifierError
	assert.ErrorAs(t, err, &unknown)
}

func TestSessionLifecycle(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	ids, err := e.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, _, err = e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)
	_, _, err = e.ApplyFeature(ctx, "s2", model.NewResult(), baseBlock("F1"))
	require.NoError(t, err)

	ids, err = e.Sessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)

	st, err := e.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)

	require.NoError(t, e.DropSession(ctx, "s1"))
	_, err = e.Session(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestApplyFeatureSerializesConcurrentSteps(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	const steps = 8
	done := make(chan error, steps)
	for i := 0; i < steps; i++ {
		go func() {
			_, _, err := e.ApplyFeature(ctx, "s1", model.NewResult(), baseBlock("F1"))
			done <- err
		}()
	}
	for i := 0; i < steps; i++ {
		require.NoError(t, <-done)
	}

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	// Each step restored the registry left by the previous one, so handles
	// never collide and the counter reflects all of them.
	assert.Equal(t, 19*steps, st.Counter)
}
