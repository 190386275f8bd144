package selector

import (
	"github.com/carverlab/facet/pkg/geom"
	"github.com/carverlab/facet/pkg/model"
)

// Class is the element-class filter of a selector.
type Class string

const (
	// ClassNamed bypasses filtering and ranking entirely: the selector
	// resolves to the output registered under Selector.Name.
	ClassNamed Class = "named"

	ClassSolid Class = "solid"
	ClassFace  Class = "face"
	ClassEdge  Class = "edge"
)

// kind returns the element kind a class filters to.
func (c Class) kind() (model.Kind, bool) {
	switch c {
	case ClassSolid:
		return model.KindSolid, true
	case ClassFace:
		return model.KindFace, true
	case ClassEdge:
		return model.KindEdge, true
	}
	return "", false
}

// Selector is a declarative query that picks exactly one element from a
// result model.
type Selector struct {
	Class      Class
	Name       string // named-output key, for ClassNamed
	Predicates []Predicate
	Rank       []Rank
}

// Named returns a selector that resolves the output under key.
func Named(key string) Selector {
	return Selector{Class: ClassNamed, Name: key}
}

// Predicate is one filtering condition. All predicates of a selector must
// match (AND semantics). The set of implementations is closed.
type Predicate interface {
	Match(el model.Element) bool
	predicate()
}

// Planar requires the element's planar metadata to be true.
type Planar struct{}

func (Planar) Match(el model.Element) bool { return el.Meta.Bool(model.KeyPlanar) }
func (Planar) predicate()                  {}

// NormalIs requires the element's snapped normal token to equal Direction.
// Elements with an indeterminate normal never match.
type NormalIs struct {
	Direction geom.Direction
}

func (p NormalIs) Match(el model.Element) bool {
	normal := el.Meta.String(model.KeyNormal)
	return normal != "" && normal == string(p.Direction)
}
func (NormalIs) predicate() {}

// CreatedBy requires the element's provenance to name the given feature.
type CreatedBy struct {
	FeatureID string
}

func (p CreatedBy) Match(el model.Element) bool {
	return el.Meta.String(model.KeyCreatedBy) == p.FeatureID
}
func (CreatedBy) predicate() {}

// RoleIs requires the element's role metadata to equal Role.
type RoleIs struct {
	Role string
}

func (p RoleIs) Match(el model.Element) bool {
	return el.Meta.String(model.KeyRole) == p.Role
}
func (RoleIs) predicate() {}

// Rank is one stage of the ranking pipeline. The set of implementations is
// closed; see Resolve for the narrowing contract.
type Rank interface {
	rank()
}

// MaxArea keeps the candidates with the maximum area metadata.
type MaxArea struct{}

func (MaxArea) rank() {}

// MinZ keeps the candidates with the minimum centerZ metadata.
type MinZ struct{}

func (MinZ) rank() {}

// MaxZ keeps the candidates with the maximum centerZ metadata.
type MaxZ struct{}

func (MaxZ) rank() {}

// ClosestTo keeps the candidates whose center is nearest to the center of
// the element the target selector resolves to. The target is resolved
// against the same, already-complete result model, so recursion cannot
// cycle.
type ClosestTo struct {
	Target *Selector
}

func (ClosestTo) rank() {}
