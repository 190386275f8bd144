package model

// Kind classifies a selectable element.
type Kind string

const (
	KindSolid Kind = "solid"
	KindFace  Kind = "face"
	KindEdge  Kind = "edge"
)

// Element is one entry in the result model's selection list.
type Element struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Meta Meta   `json:"meta"`
}

// Output is the named result of a feature, stable under a lookup key
// (e.g. "body:main") independent of the element it currently points to.
type Output struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Meta Meta   `json:"meta"`
}

// Result is the accumulated model after zero or more feature steps: named
// outputs plus the ordered selectable surface. Selection order is insertion
// order and serves only as a stable tie-break of last resort, never as
// semantic ranking.
type Result struct {
	Outputs    map[string]Output
	Selections []Element
}

// NewResult returns an empty result model.
func NewResult() Result {
	return Result{Outputs: make(map[string]Output)}
}

// Merge composes an upstream result with the partial result of the next
// feature step:
//
//  1. Outputs: upstream entries are kept, entries from next overwrite or
//     insert per key (last writer wins).
//  2. Selections: upstream entries whose ownerKey reappears in next are
//     dropped — the feature superseded that body, so the stale body's faces
//     and edges must not remain selectable. Upstream entries without a
//     matching ownerKey (or without one at all) are kept. All of next's
//     selections are appended after the kept upstream entries.
//
// Neither input is mutated.
func Merge(upstream, next Result) Result {
	merged := Result{
		Outputs:    make(map[string]Output, len(upstream.Outputs)+len(next.Outputs)),
		Selections: make([]Element, 0, len(upstream.Selections)+len(next.Selections)),
	}
	for key, out := range upstream.Outputs {
		merged.Outputs[key] = out
	}
	for key, out := range next.Outputs {
		merged.Outputs[key] = out
	}

	superseded := make(map[string]struct{})
	for _, sel := range next.Selections {
		if owner := sel.Meta.String(KeyOwnerKey); owner != "" {
			superseded[owner] = struct{}{}
		}
	}
	for _, sel := range upstream.Selections {
		if owner := sel.Meta.String(KeyOwnerKey); owner != "" {
			if _, shadowed := superseded[owner]; shadowed {
				continue
			}
		}
		merged.Selections = append(merged.Selections, sel)
	}
	merged.Selections = append(merged.Selections, next.Selections...)
	return merged
}
