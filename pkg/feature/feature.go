// Package feature describes the modeling operations a client can apply to a
// session, and decodes them from their wire form. Profiles and feature kinds
// are closed sets; anything outside them is rejected at decode time.
package feature

import (
	"errors"
	"fmt"

	"github.com/carverlab/facet/pkg/geom"
)

// Kind identifies a feature operation.
type Kind string

// KindExtrude sweeps a planar profile along an axis to produce a solid.
const KindExtrude Kind = "extrude"

// DefaultResultKey is the named-output key used when a feature does not name
// its result.
const DefaultResultKey = "body:main"

// Feature is one modeling step applied against a session.
type Feature struct {
	ID        string
	Kind      Kind
	Profile   Profile
	Axis      geom.Vec3 // unit extrusion direction
	Depth     float64
	ResultKey string
	Tags      []string
}

// Profile is a closed planar sketch at z=0. The set of implementations is
// closed.
type Profile interface {
	profile()
}

// Rectangle is an axis-aligned rectangle centered at Center.
type Rectangle struct {
	Width  float64
	Height float64
	Center geom.Vec3
}

func (Rectangle) profile() {}

// Circle is a disk of the given radius centered at Center.
type Circle struct {
	Radius float64
	Center geom.Vec3
}

func (Circle) profile() {}

// Polygon is a regular polygon inscribed in a circle of the given radius,
// rotated by Rotation radians.
type Polygon struct {
	Sides    int
	Radius   float64
	Center   geom.Vec3
	Rotation float64
}

func (Polygon) profile() {}

// Sentinel errors for wire forms the engine recognizes but does not support.
var (
	ErrProfileRefUnsupported = errors.New("profile.ref is not supported")
	ErrThroughAllUnsupported = errors.New("throughAll depth is not supported")
)

// UnsupportedKindError reports a feature kind outside the closed set.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported feature kind: %q", e.Kind)
}

// InvalidProfileError reports a profile that cannot produce a planar face.
type InvalidProfileError struct {
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s", e.Reason)
}
