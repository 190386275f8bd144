package kernel

import (
	"fmt"
	"math"

	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/geom"
)

// BuildProfile constructs the planar face for a sketch profile. Profiles lie
// in the z=0 plane with normal +Z.
func (k *Kernel) BuildProfile(p feature.Profile) (*Face, error) {
	up := geom.Vec3{Z: 1}
	switch prof := p.(type) {
	case feature.Rectangle:
		if prof.Width <= 0 || prof.Height <= 0 {
			return nil, &feature.InvalidProfileError{
				Reason: fmt.Sprintf("rectangle dimensions must be positive, got %gx%g", prof.Width, prof.Height),
			}
		}
		hw, hh := prof.Width/2, prof.Height/2
		cx, cy := prof.Center.X, prof.Center.Y
		return &Face{
			Kind: FacePolygon,
			Verts: []geom.Vec3{
				{X: cx - hw, Y: cy - hh},
				{X: cx + hw, Y: cy - hh},
				{X: cx + hw, Y: cy + hh},
				{X: cx - hw, Y: cy + hh},
			},
			Normal: up,
		}, nil

	case feature.Circle:
		if prof.Radius <= 0 {
			return nil, &feature.InvalidProfileError{
				Reason: fmt.Sprintf("circle radius must be positive, got %g", prof.Radius),
			}
		}
		return &Face{
			Kind:   FaceDisk,
			Center: geom.Vec3{X: prof.Center.X, Y: prof.Center.Y},
			Radius: prof.Radius,
			Normal: up,
		}, nil

	case feature.Polygon:
		if prof.Sides < 3 {
			return nil, &feature.InvalidProfileError{
				Reason: fmt.Sprintf("polygon requires at least 3 sides, got %d", prof.Sides),
			}
		}
		if prof.Radius <= 0 {
			return nil, &feature.InvalidProfileError{
				Reason: fmt.Sprintf("polygon radius must be positive, got %g", prof.Radius),
			}
		}
		verts := make([]geom.Vec3, 0, prof.Sides)
		step := 2 * math.Pi / float64(prof.Sides)
		for i := 0; i < prof.Sides; i++ {
			angle := prof.Rotation + step*float64(i)
			verts = append(verts, geom.Vec3{
				X: prof.Center.X + prof.Radius*math.Cos(angle),
				Y: prof.Center.Y + prof.Radius*math.Sin(angle),
			})
		}
		return &Face{Kind: FacePolygon, Verts: verts, Normal: up}, nil
	}
	return nil, &feature.InvalidProfileError{Reason: fmt.Sprintf("unsupported profile type %T", p)}
}
