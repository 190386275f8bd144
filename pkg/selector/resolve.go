package selector

import (
	"math"

	"github.com/carverlab/facet/pkg/model"
)

// Resolve evaluates the selector against a result model and returns exactly
// one element. Resolution is deterministic: the same selector against the
// same model always yields the same element or the same failure.
func Resolve(sel Selector, res model.Result) (model.Element, error) {
	if sel.Class == ClassNamed {
		out, ok := res.Outputs[sel.Name]
		if !ok {
			return model.Element{}, &MissingOutputError{Name: sel.Name}
		}
		return model.Element{ID: out.ID, Kind: model.Kind(out.Kind), Meta: out.Meta}, nil
	}

	kind, _ := sel.Class.kind()
	var candidates []model.Element
	for _, el := range res.Selections {
		if el.Kind != kind {
			continue
		}
		if !matchAll(sel.Predicates, el) {
			continue
		}
		candidates = append(candidates, el)
	}
	if len(candidates) == 0 {
		return model.Element{}, ErrNoMatch
	}

	for _, stage := range sel.Rank {
		if len(candidates) <= 1 {
			break
		}
		narrowed, err := applyRank(stage, candidates, res)
		if err != nil {
			return model.Element{}, err
		}
		candidates = narrowed
	}

	if len(candidates) != 1 {
		return model.Element{}, &AmbiguousError{Count: len(candidates)}
	}
	return candidates[0], nil
}

func matchAll(preds []Predicate, el model.Element) bool {
	for _, p := range preds {
		if !p.Match(el) {
			return false
		}
	}
	return true
}

// applyRank narrows candidates to those tied for the stage's best value.
// Ties use exact equality of the reduced value: every candidate score comes
// from the same deterministic computation, so equal geometry produces
// bit-equal scores.
func applyRank(stage Rank, candidates []model.Element, res model.Result) ([]model.Element, error) {
	switch r := stage.(type) {
	case MaxArea:
		return keepBest(candidates, func(el model.Element) float64 {
			return el.Meta.Float(model.KeyArea)
		}, true), nil
	case MinZ:
		return keepBest(candidates, func(el model.Element) float64 {
			return el.Meta.Float(model.KeyCenterZ)
		}, false), nil
	case MaxZ:
		return keepBest(candidates, func(el model.Element) float64 {
			return el.Meta.Float(model.KeyCenterZ)
		}, true), nil
	case ClosestTo:
		target, err := Resolve(*r.Target, res)
		if err != nil {
			// The inner selector's failure is this stage's failure.
			return nil, err
		}
		origin, ok := target.Meta.Vec3(model.KeyCenter)
		if !ok {
			return nil, ErrMissingCenter
		}
		return keepBest(candidates, func(el model.Element) float64 {
			center, _ := el.Meta.Vec3(model.KeyCenter)
			return center.Dist(origin)
		}, false), nil
	}
	// Unreachable for the closed set; parsing rejects unknown stages.
	return candidates, nil
}

// keepBest reduces candidates to those whose score ties the extreme value.
// The result is never empty and never larger than the input.
func keepBest(candidates []model.Element, score func(model.Element) float64, max bool) []model.Element {
	best := math.Inf(1)
	if max {
		best = math.Inf(-1)
	}
	for _, el := range candidates {
		s := score(el)
		if (max && s > best) || (!max && s < best) {
			best = s
		}
	}
	kept := candidates[:0:0]
	for _, el := range candidates {
		if score(el) == best {
			kept = append(kept, el)
		}
	}
	return kept
}
