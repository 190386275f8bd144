package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidSel(id, ownerKey, createdBy string) Element {
	return Element{
		ID:   id,
		Kind: KindSolid,
		Meta: Meta{KeyOwnerKey: ownerKey, KeyCreatedBy: createdBy, KeyRole: "body"},
	}
}

func faceSel(id, ownerKey, createdBy string) Element {
	return Element{
		ID:   id,
		Kind: KindFace,
		Meta: Meta{KeyOwnerKey: ownerKey, KeyCreatedBy: createdBy},
	}
}

func TestMergeOutputPrecedence(t *testing.T) {
	upstream := NewResult()
	upstream.Outputs["a"] = Output{ID: "F1:a", Kind: "solid"}

	next := NewResult()
	next.Outputs["a"] = Output{ID: "F2:a", Kind: "solid"}
	next.Outputs["b"] = Output{ID: "F2:b", Kind: "solid"}

	merged := Merge(upstream, next)

	require.Len(t, merged.Outputs, 2)
	assert.Equal(t, "F2:a", merged.Outputs["a"].ID, "next's entry wins the shared key")
	assert.Equal(t, "F2:b", merged.Outputs["b"].ID)

	// Inputs stay untouched.
	assert.Equal(t, "F1:a", upstream.Outputs["a"].ID)
	assert.Len(t, next.Outputs, 2)
}

func TestMergeShadowsSupersededOwner(t *testing.T) {
	upstream := NewResult()
	upstream.Selections = []Element{
		solidSel("solid", "body:main", "F1"),
		faceSel("face", "body:main", "F1"),
		faceSel("face", "body:aux", "F0"),
	}

	next := NewResult()
	next.Selections = []Element{
		solidSel("solid", "body:main", "F2"),
		faceSel("face", "body:main", "F2"),
	}

	merged := Merge(upstream, next)

	require.Len(t, merged.Selections, 3)
	// The untouched body survives, the rebuilt one is replaced wholesale.
	assert.Equal(t, "F0", merged.Selections[0].Meta.String(KeyCreatedBy))
	assert.Equal(t, "F2", merged.Selections[1].Meta.String(KeyCreatedBy))
	assert.Equal(t, "F2", merged.Selections[2].Meta.String(KeyCreatedBy))

	assert.Len(t, upstream.Selections, 3, "merge must not mutate upstream")
}

func TestMergeKeepsOwnerlessSelections(t *testing.T) {
	upstream := NewResult()
	upstream.Selections = []Element{
		{ID: "stray", Kind: KindEdge, Meta: Meta{KeyRole: "edge"}},
	}
	next := NewResult()
	next.Selections = []Element{solidSel("solid", "body:main", "F1")}

	merged := Merge(upstream, next)
	require.Len(t, merged.Selections, 2)
	assert.Equal(t, "stray", merged.Selections[0].ID)
}

func TestMergeEmptyUpstream(t *testing.T) {
	next := NewResult()
	next.Outputs["body:main"] = Output{ID: "F1:body:main", Kind: "solid"}
	next.Selections = []Element{solidSel("solid", "body:main", "F1")}

	merged := Merge(NewResult(), next)
	assert.Equal(t, next.Outputs, merged.Outputs)
	assert.Equal(t, next.Selections, merged.Selections)
}

func TestResultWireRoundtrip(t *testing.T) {
	r := NewResult()
	r.Outputs["body:main"] = Output{ID: "F1:body:main", Kind: "solid", Meta: Meta{KeyRole: "body"}}
	r.Outputs["body:aux"] = Output{ID: "F0:body:aux", Kind: "solid"}
	r.Selections = []Element{faceSel("face", "body:main", "F1")}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	// Deterministic encoding: keys sorted.
	second, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(second))

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Outputs, back.Outputs)
	require.Len(t, back.Selections, 1)
	assert.Equal(t, "face", back.Selections[0].ID)
}

func TestResultUnmarshalKeyFallsBackToID(t *testing.T) {
	raw := `{"outputs":[{"object":{"id":"F1:body:main","kind":"solid","meta":{}}}],"selections":[]}`
	var r Result
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	_, ok := r.Outputs["F1:body:main"]
	assert.True(t, ok)
}

func TestMetaAccessors(t *testing.T) {
	m := Meta{
		KeyArea:    100.0,
		KeyPlanar:  true,
		KeyRole:    "body",
		KeyCenter:  []float64{5, 5, 10},
		KeyCenterZ: 10.0,
	}

	assert.Equal(t, 100.0, m.Float(KeyArea))
	assert.True(t, m.Bool(KeyPlanar))
	assert.Equal(t, "body", m.String(KeyRole))
	assert.Zero(t, m.Float("missing"))
	assert.False(t, m.Has("missing"))

	c, ok := m.Vec3(KeyCenter)
	require.True(t, ok)
	assert.Equal(t, 10.0, c.Z)

	clone := m.Clone()
	clone[KeyRole] = "other"
	assert.Equal(t, "body", m.String(KeyRole), "clone must be independent")
}
