package pmi

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/carverlab/facet/pkg/selector"
)

// Wire kind tokens for geometry references.
const (
	wireRefSurface = "ref.surface"
	wireRefEdge    = "ref.edge"
	wireRefAxis    = "ref.axis"
	wireRefPoint   = "ref.point"
	wireRefFrame   = "ref.frame"
)

type wirePayload struct {
	Datums      []map[string]any `mapstructure:"datums"`
	Constraints []map[string]any `mapstructure:"constraints"`
}

type wireDatum struct {
	ID        string         `mapstructure:"id"`
	Label     string         `mapstructure:"label"`
	Modifiers []string       `mapstructure:"modifiers"`
	Target    map[string]any `mapstructure:"target"`
}

type wireConstraint struct {
	Kind      string           `mapstructure:"kind"`
	Tolerance any              `mapstructure:"tolerance"`
	Zone      string           `mapstructure:"zone"`
	Modifiers []string         `mapstructure:"modifiers"`
	Target    map[string]any   `mapstructure:"target"`
	Datum     []map[string]any `mapstructure:"datum"`
}

type wireRef struct {
	Kind     string         `mapstructure:"kind"`
	Selector map[string]any `mapstructure:"selector"`
}

type wireDatumRef struct {
	Datum string `mapstructure:"datum"`
}

// ParsePayload decodes an annotation payload from its wire map form.
// Reference selectors are parsed eagerly so malformed queries surface
// before any resolution happens.
func ParsePayload(raw map[string]any) (Payload, error) {
	var w wirePayload
	if err := mapstructure.Decode(raw, &w); err != nil {
		return Payload{}, fmt.Errorf("decode annotations: %w", err)
	}

	var p Payload
	for _, rawDatum := range w.Datums {
		spec, err := parseDatum(rawDatum)
		if err != nil {
			return Payload{}, err
		}
		p.Datums = append(p.Datums, spec)
	}
	for _, rawConstraint := range w.Constraints {
		spec, err := parseConstraint(rawConstraint)
		if err != nil {
			return Payload{}, err
		}
		p.Constraints = append(p.Constraints, spec)
	}
	return p, nil
}

func parseDatum(raw map[string]any) (DatumSpec, error) {
	var w wireDatum
	if err := mapstructure.Decode(raw, &w); err != nil {
		return DatumSpec{}, fmt.Errorf("decode datum: %w", err)
	}
	target, err := parseRef(w.Target)
	if err != nil {
		return DatumSpec{}, fmt.Errorf("datum %q: %w", w.ID, err)
	}
	return DatumSpec{
		ID:        w.ID,
		Label:     w.Label,
		Modifiers: w.Modifiers,
		Target:    target,
	}, nil
}

func parseConstraint(raw map[string]any) (ConstraintSpec, error) {
	var w wireConstraint
	if err := mapstructure.Decode(raw, &w); err != nil {
		return ConstraintSpec{}, fmt.Errorf("decode constraint: %w", err)
	}
	target, err := parseRef(w.Target)
	if err != nil {
		return ConstraintSpec{}, fmt.Errorf("constraint %q: %w", w.Kind, err)
	}
	spec := ConstraintSpec{
		Kind:      w.Kind,
		Tolerance: scalarValue(w.Tolerance),
		Zone:      w.Zone,
		Modifiers: w.Modifiers,
		Target:    target,
	}
	for _, rawRef := range w.Datum {
		var dr wireDatumRef
		if err := mapstructure.Decode(rawRef, &dr); err != nil {
			return ConstraintSpec{}, fmt.Errorf("decode datum reference: %w", err)
		}
		spec.DatumRefs = append(spec.DatumRefs, dr.Datum)
	}
	return spec, nil
}

func parseRef(raw map[string]any) (Ref, error) {
	var w wireRef
	if err := mapstructure.Decode(raw, &w); err != nil {
		return Ref{}, fmt.Errorf("decode reference: %w", err)
	}
	var kind RefKind
	switch w.Kind {
	case wireRefSurface:
		kind = RefSurface
	case wireRefEdge:
		kind = RefEdge
	case wireRefAxis:
		kind = RefAxis
	case wireRefPoint:
		kind = RefPoint
	case wireRefFrame:
		kind = RefFrame
	default:
		return Ref{}, &UnsupportedRefError{Kind: RefKind(w.Kind)}
	}
	sel, err := selector.Parse(w.Selector)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Kind: kind, Selector: sel}, nil
}

// scalarValue accepts either a bare number or an expr.literal envelope
// and returns its numeric value, defaulting to zero.
func scalarValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case map[string]any:
		if n["kind"] == "expr.literal" {
			return scalarValue(n["value"])
		}
	}
	return 0
}
