package kernel

import (
	"math"

	"github.com/carverlab/facet/pkg/geom"
)

// MeshOptions controls triangulation density.
type MeshOptions struct {
	// LinearDeflection bounds the sagitta between a curve and its chords.
	LinearDeflection float64
	// AngularDeflection bounds the arc angle per chord, in radians.
	AngularDeflection float64
	// Relative scales LinearDeflection by the shape's largest bounding-box
	// dimension.
	Relative bool
}

// DefaultMeshOptions are the deflections used when a request omits them.
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{LinearDeflection: 0.1, AngularDeflection: 0.5}
}

// Mesh is a triangle soup: flattened xyz positions and triangle vertex
// indices into them.
type Mesh struct {
	Positions []float64 `json:"positions"`
	Indices   []int     `json:"indices"`
}

// Triangulate tessellates a shape. Solids mesh every boundary face, single
// faces mesh themselves, edges produce an empty mesh.
func (k *Kernel) Triangulate(s Shape, opts MeshOptions) (Mesh, error) {
	if opts.LinearDeflection <= 0 {
		opts.LinearDeflection = DefaultMeshOptions().LinearDeflection
	}
	if opts.AngularDeflection <= 0 {
		opts.AngularDeflection = DefaultMeshOptions().AngularDeflection
	}
	if opts.Relative {
		if dim := s.Bounds().MaxDim(); dim > 0 {
			opts.LinearDeflection *= dim
		}
	}

	mesh := Mesh{Positions: []float64{}, Indices: []int{}}
	switch shape := s.(type) {
	case *Solid:
		for _, f := range shape.Faces() {
			meshFace(&mesh, f, opts)
		}
	case *Face:
		meshFace(&mesh, shape, opts)
	case *Edge:
		// Curves carry no surface to mesh.
	default:
		return Mesh{}, &OperationError{Op: "triangulate", Reason: "unknown shape kind"}
	}
	return mesh, nil
}

func meshFace(mesh *Mesh, f *Face, opts MeshOptions) {
	switch f.Kind {
	case FacePolygon:
		base := pushVerts(mesh, f.Verts)
		// Profiles are convex, so a fan from the first vertex covers the face.
		for i := 1; i < len(f.Verts)-1; i++ {
			mesh.Indices = append(mesh.Indices, base, base+i, base+i+1)
		}
	case FaceDisk:
		ring := circlePoints(f.Center, f.Radius, circleSegments(f.Radius, opts))
		center := pushVerts(mesh, []geom.Vec3{f.Center})
		base := pushVerts(mesh, ring)
		for i := range ring {
			mesh.Indices = append(mesh.Indices, center, base+i, base+(i+1)%len(ring))
		}
	case FaceTube:
		n := circleSegments(f.Radius, opts)
		bottom := circlePoints(f.Center, f.Radius, n)
		top := circlePoints(f.Center.Add(f.Sweep), f.Radius, n)
		b := pushVerts(mesh, bottom)
		t := pushVerts(mesh, top)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			mesh.Indices = append(mesh.Indices,
				b+i, b+j, t+j,
				b+i, t+j, t+i,
			)
		}
	}
}

func pushVerts(mesh *Mesh, verts []geom.Vec3) int {
	base := len(mesh.Positions) / 3
	for _, v := range verts {
		mesh.Positions = append(mesh.Positions, v.X, v.Y, v.Z)
	}
	return base
}

// circleSegments picks the chord count satisfying both deflection bounds.
func circleSegments(radius float64, opts MeshOptions) int {
	arc := opts.AngularDeflection
	// Sagitta bound: r*(1-cos(a/2)) <= linear deflection.
	if ratio := 1 - opts.LinearDeflection/radius; ratio > -1 && ratio < 1 {
		if fromLinear := 2 * math.Acos(ratio); fromLinear < arc {
			arc = fromLinear
		}
	}
	segments := int(math.Ceil(2 * math.Pi / arc))
	if segments < 8 {
		segments = 8
	}
	return segments
}
