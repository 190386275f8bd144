package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverlab/facet/pkg/geom"
)

func TestParseExtrude(t *testing.T) {
	raw := map[string]any{
		"id":   "F1",
		"kind": "feature.extrude",
		"profile": map[string]any{
			"kind":   "profile.rectangle",
			"width":  10.0,
			"height": 10.0,
			"center": []any{5.0, 5.0},
		},
		"depth":  5.0,
		"axis":   "+Z",
		"result": "body:main",
		"tags":   []string{"base"},
	}

	f, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "F1", f.ID)
	assert.Equal(t, KindExtrude, f.Kind)
	assert.Equal(t, 5.0, f.Depth)
	assert.Equal(t, geom.Vec3{Z: 1}, f.Axis)
	assert.Equal(t, "body:main", f.ResultKey)
	assert.Equal(t, []string{"base"}, f.Tags)

	rect, ok := f.Profile.(Rectangle)
	require.True(t, ok)
	assert.Equal(t, 10.0, rect.Width)
	assert.Equal(t, geom.Vec3{X: 5, Y: 5}, rect.Center)
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.circle", "radius": 2.0},
		"depth":   1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "feature", f.ID)
	assert.Equal(t, DefaultResultKey, f.ResultKey)
	assert.Equal(t, geom.Vec3{Z: 1}, f.Axis, "missing axis defaults to +Z")
}

func TestParseLiteralEnvelopes(t *testing.T) {
	f, err := Parse(map[string]any{
		"kind": "feature.extrude",
		"profile": map[string]any{
			"kind":   "profile.poly",
			"sides":  6,
			"radius": map[string]any{"kind": "expr.literal", "value": 3.0},
		},
		"depth": map[string]any{"kind": "expr.literal", "value": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.Depth)

	poly, ok := f.Profile.(Polygon)
	require.True(t, ok)
	assert.Equal(t, 6, poly.Sides)
	assert.Equal(t, 3.0, poly.Radius)
}

func TestParseAxisVector(t *testing.T) {
	f, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.circle", "radius": 1.0},
		"depth":   1.0,
		"axis": map[string]any{
			"kind":      "axis.vector",
			"direction": []any{0.0, 0.0, 2.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{Z: 1}, f.Axis, "axis vectors are normalized")
}

func TestParseAxisZeroFallsBack(t *testing.T) {
	f, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.circle", "radius": 1.0},
		"depth":   1.0,
		"axis": map[string]any{
			"kind":      "axis.vector",
			"direction": []any{0.0, 0.0, 0.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{Z: 1}, f.Axis)
}

func TestParseRejectsProfileRef(t *testing.T) {
	_, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.ref", "name": "sketch1"},
		"depth":   1.0,
	})
	assert.ErrorIs(t, err, ErrProfileRefUnsupported)
}

func TestParseRejectsThroughAll(t *testing.T) {
	_, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.circle", "radius": 1.0},
		"depth":   "throughAll",
	})
	assert.ErrorIs(t, err, ErrThroughAllUnsupported)
}

func TestParseUnsupportedKind(t *testing.T) {
	_, err := Parse(map[string]any{"kind": "feature.revolve"})
	var unsupported *UnsupportedKindError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "feature.revolve", unsupported.Kind)
}

func TestParseUnknownProfile(t *testing.T) {
	_, err := Parse(map[string]any{
		"kind":    "feature.extrude",
		"profile": map[string]any{"kind": "profile.spline"},
	})
	var invalid *InvalidProfileError
	assert.ErrorAs(t, err, &invalid)
}
