package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverlab/facet/pkg/geom"
)

func TestParseFaceSelector(t *testing.T) {
	raw := map[string]any{
		"kind": "selector.face",
		"predicates": []any{
			map[string]any{"kind": "pred.planar"},
			map[string]any{"kind": "pred.normal", "value": "+Z"},
			map[string]any{"kind": "pred.createdBy", "featureId": "F1"},
		},
		"rank": []any{
			map[string]any{"kind": "rank.maxArea"},
			map[string]any{"kind": "rank.maxZ"},
		},
	}

	sel, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ClassFace, sel.Class)
	require.Len(t, sel.Predicates, 3)
	assert.Equal(t, Planar{}, sel.Predicates[0])
	assert.Equal(t, NormalIs{Direction: geom.PlusZ}, sel.Predicates[1])
	assert.Equal(t, CreatedBy{FeatureID: "F1"}, sel.Predicates[2])
	require.Len(t, sel.Rank, 2)
	assert.Equal(t, MaxArea{}, sel.Rank[0])
	assert.Equal(t, MaxZ{}, sel.Rank[1])
}

func TestParseNamedSelector(t *testing.T) {
	sel, err := Parse(map[string]any{"kind": "selector.named", "name": "body:main"})
	require.NoError(t, err)
	assert.Equal(t, Named("body:main"), sel)
}

func TestParseClosestTo(t *testing.T) {
	raw := map[string]any{
		"kind": "selector.edge",
		"rank": []any{
			map[string]any{
				"kind":   "rank.closestTo",
				"target": map[string]any{"kind": "selector.named", "name": "body:main"},
			},
		},
	}
	sel, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, sel.Rank, 1)
	closest, ok := sel.Rank[0].(ClosestTo)
	require.True(t, ok)
	require.NotNil(t, closest.Target)
	assert.Equal(t, "body:main", closest.Target.Name)
}

func TestParseUnknownKinds(t *testing.T) {
	cases := []struct {
		name     string
		raw      map[string]any
		category string
	}{
		{
			"selector",
			map[string]any{"kind": "selector.vertex"},
			"selector",
		},
		{
			"predicate",
			map[string]any{
				"kind":       "selector.face",
				"predicates": []any{map[string]any{"kind": "pred.concave"}},
			},
			"predicate",
		},
		{
			"rank",
			map[string]any{
				"kind": "selector.face",
				"rank": []any{map[string]any{"kind": "rank.smallest"}},
			},
			"rank",
		},
		{
			"nested closestTo target",
			map[string]any{
				"kind": "selector.face",
				"rank": []any{map[string]any{
					"kind":   "rank.closestTo",
					"target": map[string]any{"kind": "selector.vertex"},
				}},
			},
			"selector",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			var unknown *UnknownKindError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tc.category, unknown.Category)
		})
	}
}
