package kernel

import (
	"math"

	"github.com/carverlab/facet/pkg/geom"
)

// tubeQuadratureSegments is the tessellation used for numeric surface
// properties of tube faces.
const tubeQuadratureSegments = 256

// SurfaceProperties returns the area and centroid of a face. Planar faces
// are computed analytically; tube faces numerically from a fine
// tessellation.
func (k *Kernel) SurfaceProperties(f *Face) (area float64, centroid geom.Vec3, err error) {
	switch f.Kind {
	case FacePolygon:
		if len(f.Verts) < 3 {
			return 0, geom.Vec3{}, &OperationError{Op: "surfaceProperties", Reason: "degenerate polygon"}
		}
		return polygonProperties(f.Verts)
	case FaceDisk:
		return math.Pi * f.Radius * f.Radius, f.Center, nil
	case FaceTube:
		ring := circlePoints(f.Center, f.Radius, tubeQuadratureSegments)
		for i := range ring {
			chord := ring[(i+1)%len(ring)].Sub(ring[i])
			area += chord.Cross(f.Sweep).Norm()
		}
		return area, f.Center.Add(f.Sweep.Scale(0.5)), nil
	}
	return 0, geom.Vec3{}, &OperationError{Op: "surfaceProperties", Reason: "unknown face kind"}
}

// polygonProperties computes area and centroid of a convex planar polygon
// by fanning triangles from the first vertex.
func polygonProperties(verts []geom.Vec3) (float64, geom.Vec3, error) {
	var total float64
	var weighted geom.Vec3
	a := verts[0]
	for i := 1; i < len(verts)-1; i++ {
		b, c := verts[i], verts[i+1]
		area := b.Sub(a).Cross(c.Sub(a)).Norm() / 2
		center := geom.Vec3{
			X: (a.X + b.X + c.X) / 3,
			Y: (a.Y + b.Y + c.Y) / 3,
			Z: (a.Z + b.Z + c.Z) / 3,
		}
		total += area
		weighted = weighted.Add(center.Scale(area))
	}
	if total == 0 {
		return 0, geom.Vec3{}, &OperationError{Op: "surfaceProperties", Reason: "zero-area polygon"}
	}
	return total, weighted.Scale(1 / total), nil
}

// ClassifySurface reports whether a face is planar and, if so, its unit
// normal. It never fails: non-planar faces degrade to (false, zero).
func (k *Kernel) ClassifySurface(f *Face) (planar bool, normal geom.Vec3) {
	switch f.Kind {
	case FacePolygon, FaceDisk:
		return true, f.Normal.Unit()
	}
	return false, geom.Vec3{}
}

// BoundsCenter returns the midpoint of a shape's axis-aligned bounding box.
func (k *Kernel) BoundsCenter(s Shape) geom.Vec3 {
	return s.Bounds().Center()
}

// diskBox bounds a circle of the given radius and plane normal. The extent
// along each axis shrinks with the normal's alignment to it.
func diskBox(center geom.Vec3, radius float64, normal geom.Vec3) geom.Box {
	n := normal.Unit()
	ext := geom.Vec3{
		X: radius * math.Sqrt(math.Max(0, 1-n.X*n.X)),
		Y: radius * math.Sqrt(math.Max(0, 1-n.Y*n.Y)),
		Z: radius * math.Sqrt(math.Max(0, 1-n.Z*n.Z)),
	}
	return geom.Box{Min: center.Sub(ext), Max: center.Add(ext)}
}

func (f *Face) Bounds() geom.Box {
	switch f.Kind {
	case FacePolygon:
		return geom.BoxOf(f.Verts...)
	case FaceDisk:
		return diskBox(f.Center, f.Radius, f.Normal)
	default:
		// Tube rims are translated copies of the profile circle, which
		// always lies in a horizontal plane.
		up := geom.Vec3{Z: 1}
		box := diskBox(f.Center, f.Radius, up)
		top := diskBox(f.Center.Add(f.Sweep), f.Radius, up)
		return box.Extend(top.Min).Extend(top.Max)
	}
}

func (e *Edge) Bounds() geom.Box {
	if e.Kind == EdgeCircle {
		return diskBox(e.Center, e.Radius, e.Normal)
	}
	return geom.BoxOf(e.A, e.B)
}

func (s *Solid) Bounds() geom.Box {
	faces := s.Faces()
	box := faces[0].Bounds()
	for _, f := range faces[1:] {
		fb := f.Bounds()
		box = box.Extend(fb.Min).Extend(fb.Max)
	}
	return box
}

// circlePoints samples n points on the horizontal circle of the given
// radius around center. Profile circles always lie in a horizontal plane.
func circlePoints(center geom.Vec3, radius float64, n int) []geom.Vec3 {
	pts := make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Vec3{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
			Z: center.Z,
		}
	}
	return pts
}
