package selector

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/carverlab/facet/pkg/geom"
)

// Wire kind tokens.
const (
	wireNamed = "selector.named"
	wireSolid = "selector.solid"
	wireFace  = "selector.face"
	wireEdge  = "selector.edge"

	wirePredPlanar    = "pred.planar"
	wirePredNormal    = "pred.normal"
	wirePredCreatedBy = "pred.createdBy"
	wirePredRole      = "pred.role"

	wireRankMaxArea   = "rank.maxArea"
	wireRankMinZ      = "rank.minZ"
	wireRankMaxZ      = "rank.maxZ"
	wireRankClosestTo = "rank.closestTo"
)

type wireSelector struct {
	Kind       string           `mapstructure:"kind"`
	Name       string           `mapstructure:"name"`
	Predicates []map[string]any `mapstructure:"predicates"`
	Rank       []map[string]any `mapstructure:"rank"`
}

type wirePredicate struct {
	Kind      string `mapstructure:"kind"`
	Value     string `mapstructure:"value"`
	FeatureID string `mapstructure:"featureId"`
}

type wireRank struct {
	Kind   string         `mapstructure:"kind"`
	Target map[string]any `mapstructure:"target"`
}

// Parse decodes a selector from its wire map form. Unknown selector,
// predicate, or rank kinds are rejected here so a malformed query never
// reaches resolution.
func Parse(raw map[string]any) (Selector, error) {
	var w wireSelector
	if err := mapstructure.Decode(raw, &w); err != nil {
		return Selector{}, fmt.Errorf("decode selector: %w", err)
	}

	var sel Selector
	switch w.Kind {
	case wireNamed:
		sel.Class = ClassNamed
		sel.Name = w.Name
		return sel, nil
	case wireSolid:
		sel.Class = ClassSolid
	case wireFace:
		sel.Class = ClassFace
	case wireEdge:
		sel.Class = ClassEdge
	default:
		return Selector{}, &UnknownKindError{Category: "selector", Kind: w.Kind}
	}

	for _, rawPred := range w.Predicates {
		pred, err := parsePredicate(rawPred)
		if err != nil {
			return Selector{}, err
		}
		sel.Predicates = append(sel.Predicates, pred)
	}
	for _, rawRank := range w.Rank {
		stage, err := parseRank(rawRank)
		if err != nil {
			return Selector{}, err
		}
		sel.Rank = append(sel.Rank, stage)
	}
	return sel, nil
}

func parsePredicate(raw map[string]any) (Predicate, error) {
	var w wirePredicate
	if err := mapstructure.Decode(raw, &w); err != nil {
		return nil, fmt.Errorf("decode predicate: %w", err)
	}
	switch w.Kind {
	case wirePredPlanar:
		return Planar{}, nil
	case wirePredNormal:
		return NormalIs{Direction: geom.Direction(w.Value)}, nil
	case wirePredCreatedBy:
		return CreatedBy{FeatureID: w.FeatureID}, nil
	case wirePredRole:
		return RoleIs{Role: w.Value}, nil
	}
	return nil, &UnknownKindError{Category: "predicate", Kind: w.Kind}
}

func parseRank(raw map[string]any) (Rank, error) {
	var w wireRank
	if err := mapstructure.Decode(raw, &w); err != nil {
		return nil, fmt.Errorf("decode rank: %w", err)
	}
	switch w.Kind {
	case wireRankMaxArea:
		return MaxArea{}, nil
	case wireRankMinZ:
		return MinZ{}, nil
	case wireRankMaxZ:
		return MaxZ{}, nil
	case wireRankClosestTo:
		target, err := Parse(w.Target)
		if err != nil {
			return nil, fmt.Errorf("closestTo target: %w", err)
		}
		return ClosestTo{Target: &target}, nil
	}
	return nil, &UnknownKindError{Category: "rank", Kind: w.Kind}
}
