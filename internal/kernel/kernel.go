// Package kernel is the analytic geometry kernel behind the modeling engine.
// It builds planar profiles, extrudes them into prismatic solids, reports
// surface properties, triangulates shapes for display, and writes a neutral
// interchange file. Shapes are plain data so a session's geometry can be
// snapshotted and restored by the session store.
package kernel

import (
	"fmt"

	"github.com/carverlab/facet/pkg/geom"
)

// ShapeKind discriminates the concrete shape types.
type ShapeKind string

const (
	ShapeSolid ShapeKind = "solid"
	ShapeFace  ShapeKind = "face"
	ShapeEdge  ShapeKind = "edge"
)

// Shape is a geometric element the kernel can operate on. The set of
// implementations is closed: Solid, Face, Edge.
type Shape interface {
	ShapeKind() ShapeKind
	Bounds() geom.Box
}

// FaceKind discriminates face geometries.
type FaceKind string

const (
	// FacePolygon is a planar polygonal face.
	FacePolygon FaceKind = "polygon"
	// FaceDisk is a planar circular face.
	FaceDisk FaceKind = "disk"
	// FaceTube is the lateral surface of an extruded circle. Not planar.
	FaceTube FaceKind = "tube"
)

// Face is a bounded surface.
type Face struct {
	Kind FaceKind `json:"kind"`

	// Polygon boundary, counter-clockwise about Normal.
	Verts []geom.Vec3 `json:"verts,omitempty"`

	// Disk and tube geometry.
	Center geom.Vec3 `json:"center,omitempty"`
	Radius float64   `json:"radius,omitempty"`

	// Plane normal for planar faces, outward for faces of a solid.
	Normal geom.Vec3 `json:"normal,omitempty"`

	// Extrusion vector of a tube face.
	Sweep geom.Vec3 `json:"sweep,omitempty"`
}

func (f *Face) ShapeKind() ShapeKind { return ShapeFace }

// EdgeKind discriminates edge geometries.
type EdgeKind string

const (
	EdgeSegment EdgeKind = "segment"
	EdgeCircle  EdgeKind = "circle"
)

// Edge is a bounded curve.
type Edge struct {
	Kind EdgeKind `json:"kind"`

	// Segment endpoints.
	A geom.Vec3 `json:"a,omitempty"`
	B geom.Vec3 `json:"b,omitempty"`

	// Full-circle geometry.
	Center geom.Vec3 `json:"center,omitempty"`
	Radius float64   `json:"radius,omitempty"`
	Normal geom.Vec3 `json:"normal,omitempty"`
}

func (e *Edge) ShapeKind() ShapeKind { return ShapeEdge }

// Solid is a prism: a planar base face swept along a vector. Its faces and
// edges are derived deterministically from the base and sweep, so only those
// two need to persist.
type Solid struct {
	Base  *Face     `json:"base"`
	Sweep geom.Vec3 `json:"sweep"`
}

func (s *Solid) ShapeKind() ShapeKind { return ShapeSolid }

// Kernel exposes the geometry operations the modeling engine consumes.
// It is stateless and safe for concurrent use.
type Kernel struct{}

// New returns a kernel.
func New() *Kernel { return &Kernel{} }

// OperationError reports a kernel operation that could not produce a valid
// result.
type OperationError struct {
	Op     string
	Reason string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("kernel %s failed: %s", e.Op, e.Reason)
}
