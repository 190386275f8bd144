package pmi

import (
	"fmt"
	"log/slog"

	"github.com/carverlab/facet/pkg/model"
)

// DatumSpec is the decoded wire form of a datum declaration.
type DatumSpec struct {
	ID        string
	Label     string
	Modifiers []string
	Target    Ref
}

// ConstraintSpec is the decoded wire form of a geometric constraint.
type ConstraintSpec struct {
	Kind      string
	Tolerance float64
	Zone      string
	Modifiers []string
	Target    Ref
	DatumRefs []string
}

// Payload carries the datums and constraints of a single annotation request.
type Payload struct {
	Datums      []DatumSpec
	Constraints []ConstraintSpec
}

// DatumRecord is a resolved datum ready for interchange writing.
type DatumRecord struct {
	ID        string
	Label     string
	Modifiers []DatumModifier
	Target    Target
}

// ToleranceRecord is a resolved geometric tolerance with its datum
// references cross-linked to the records they name.
type ToleranceRecord struct {
	Type      ToleranceType
	Value     float64
	Zone      ZoneShape
	Modifiers []ToleranceModifier
	Target    Target
	Datums    []*DatumRecord
}

// Graph holds the resolved annotations of one request in declaration order.
type Graph struct {
	Datums     []*DatumRecord
	Tolerances []*ToleranceRecord
}

// Builder resolves annotation payloads against a result model.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder returns a Builder that logs skipped entries to the given
// logger. A nil logger falls back to slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build resolves every datum and constraint in the payload.
//
// Unknown datum or tolerance modifiers and unresolvable geometry references
// fail the whole build. Constraints with an unrecognized kind are skipped
// with a warning, as are datum references that name no declared datum.
func (b *Builder) Build(p Payload, res model.Result, handles HandleResolver) (*Graph, error) {
	graph := &Graph{}
	byID := make(map[string]*DatumRecord, len(p.Datums))

	for _, spec := range p.Datums {
		rec := &DatumRecord{ID: spec.ID, Label: spec.Label}
		if rec.Label == "" {
			rec.Label = spec.ID
		}
		for _, tag := range spec.Modifiers {
			mod, err := ParseDatumModifier(tag)
			if err != nil {
				return nil, fmt.Errorf("datum %q: %w", spec.ID, err)
			}
			rec.Modifiers = append(rec.Modifiers, mod)
		}
		target, err := ResolveRef(spec.Target, res, handles)
		if err != nil {
			return nil, fmt.Errorf("datum %q: %w", spec.ID, err)
		}
		rec.Target = target
		graph.Datums = append(graph.Datums, rec)
		byID[rec.ID] = rec
	}

	for _, spec := range p.Constraints {
		typ, ok := parseToleranceType(spec.Kind)
		if !ok {
			b.logger.Warn("skipping constraint with unknown kind", "kind", spec.Kind)
			continue
		}
		rec := &ToleranceRecord{
			Type:  typ,
			Value: spec.Tolerance,
		}
		if ZoneShape(spec.Zone) == ZoneDiameter {
			rec.Zone = ZoneDiameter
		}
		for _, tag := range spec.Modifiers {
			mod, err := ParseToleranceModifier(tag)
			if err != nil {
				return nil, fmt.Errorf("constraint %q: %w", spec.Kind, err)
			}
			rec.Modifiers = append(rec.Modifiers, mod)
		}
		target, err := ResolveRef(spec.Target, res, handles)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", spec.Kind, err)
		}
		rec.Target = target
		for _, id := range spec.DatumRefs {
			datum, ok := byID[id]
			if !ok {
				b.logger.Warn("skipping datum reference to undeclared datum", "datum", id)
				continue
			}
			rec.Datums = append(rec.Datums, datum)
		}
		graph.Tolerances = append(graph.Tolerances, rec)
	}

	return graph, nil
}
