package pmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverlab/facet/pkg/geom"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/selector"
)

func TestResolveRefSurface(t *testing.T) {
	res, handles := annotated()
	target, err := ResolveRef(surfaceRef(geom.PlusZ), res, handles)
	require.NoError(t, err)
	assert.Equal(t, "shape:2", target.Handle)
	assert.Equal(t, "top", target.Object)
	assert.Equal(t, model.KindFace, target.Element.Kind)
}

func TestResolveRefEdge(t *testing.T) {
	res, handles := annotated()
	ref := Ref{Kind: RefEdge, Selector: selector.Selector{Class: selector.ClassEdge}}
	target, err := ResolveRef(ref, res, handles)
	require.NoError(t, err)
	assert.Equal(t, "rim", target.Object)
}

func TestResolveRefTypeMismatch(t *testing.T) {
	res, handles := annotated()
	ref := Ref{Kind: RefSurface, Selector: selector.Selector{Class: selector.ClassEdge}}
	_, err := ResolveRef(ref, res, handles)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, RefSurface, mismatch.Expected)
	assert.Equal(t, model.KindEdge, mismatch.Got)
}

func TestResolveRefUnsupportedKinds(t *testing.T) {
	res, handles := annotated()
	for _, kind := range []RefKind{RefAxis, RefPoint, RefFrame, RefKind("ref.bogus")} {
		_, err := ResolveRef(Ref{Kind: kind}, res, handles)
		var unsupported *UnsupportedRefError
		require.ErrorAs(t, err, &unsupported, "kind %q", kind)
	}
}

func TestResolveRefMissingHandle(t *testing.T) {
	res := model.NewResult()
	res.Selections = []model.Element{
		{ID: "face", Kind: model.KindFace, Meta: model.Meta{model.KeyPlanar: true}},
	}
	ref := Ref{Kind: RefSurface, Selector: selector.Selector{Class: selector.ClassFace}}
	_, err := ResolveRef(ref, res, handleMap{})
	assert.ErrorIs(t, err, ErrMissingHandle)
}

func TestResolveRefUnknownHandle(t *testing.T) {
	res, _ := annotated()
	_, err := ResolveRef(surfaceRef(geom.PlusZ), res, handleMap{})
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	raw := map[string]any{
		"datums": []any{
			map[string]any{
				"id":        "A",
				"label":     "A",
				"modifiers": []string{"MMB"},
				"target": map[string]any{
					"kind":     "ref.surface",
					"selector": map[string]any{"kind": "selector.face"},
				},
			},
		},
		"constraints": []any{
			map[string]any{
				"kind":      "constraint.position",
				"tolerance": map[string]any{"kind": "expr.literal", "value": 0.1},
				"zone":      "diameter",
				"modifiers": []string{"MMC"},
				"target": map[string]any{
					"kind":     "ref.surface",
					"selector": map[string]any{"kind": "selector.face"},
				},
				"datum": []any{map[string]any{"datum": "A"}},
			},
		},
	}

	p, err := ParsePayload(raw)
	require.NoError(t, err)
	require.Len(t, p.Datums, 1)
	assert.Equal(t, RefSurface, p.Datums[0].Target.Kind)
	require.Len(t, p.Constraints, 1)
	c := p.Constraints[0]
	assert.Equal(t, 0.1, c.Tolerance)
	assert.Equal(t, "diameter", c.Zone)
	assert.Equal(t, []string{"A"}, c.DatumRefs)
}

func TestParsePayloadRejectsUnknownRefKind(t *testing.T) {
	raw := map[string]any{
		"datums": []any{
			map[string]any{
				"id":     "A",
				"target": map[string]any{"kind": "ref.plane"},
			},
		},
	}
	_, err := ParsePayload(raw)
	var unsupported *UnsupportedRefError
	assert.ErrorAs(t, err, &unsupported)
}
