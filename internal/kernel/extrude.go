package kernel

import "github.com/carverlab/facet/pkg/geom"

// Extrude sweeps a planar profile face along vec and returns the resulting
// prism. The sweep vector must leave the profile plane.
func (k *Kernel) Extrude(base *Face, vec geom.Vec3) (*Solid, error) {
	if base == nil || base.Kind == FaceTube {
		return nil, &OperationError{Op: "extrude", Reason: "profile must be a planar face"}
	}
	if base.Normal.Dot(vec) == 0 {
		return nil, &OperationError{Op: "extrude", Reason: "extrusion vector lies in the profile plane"}
	}
	return &Solid{Base: base, Sweep: vec}, nil
}

// orientation returns +1 when the sweep leaves along the base normal,
// -1 when it leaves against it. Outward face normals depend on it.
func (s *Solid) orientation() float64 {
	if s.Base.Normal.Dot(s.Sweep) >= 0 {
		return 1
	}
	return -1
}

// Faces enumerates the solid's boundary faces in deterministic order:
// bottom, top, then the lateral faces following the profile boundary.
// Normals are outward.
func (s *Solid) Faces() []*Face {
	sign := s.orientation()
	bottomNormal := s.Base.Normal.Scale(-sign)
	topNormal := s.Base.Normal.Scale(sign)

	switch s.Base.Kind {
	case FaceDisk:
		return []*Face{
			{Kind: FaceDisk, Center: s.Base.Center, Radius: s.Base.Radius, Normal: bottomNormal},
			{Kind: FaceDisk, Center: s.Base.Center.Add(s.Sweep), Radius: s.Base.Radius, Normal: topNormal},
			{Kind: FaceTube, Center: s.Base.Center, Radius: s.Base.Radius, Sweep: s.Sweep},
		}
	default:
		verts := s.Base.Verts
		faces := make([]*Face, 0, len(verts)+2)
		faces = append(faces, &Face{Kind: FacePolygon, Verts: verts, Normal: bottomNormal})

		top := make([]geom.Vec3, len(verts))
		for i, v := range verts {
			top[i] = v.Add(s.Sweep)
		}
		faces = append(faces, &Face{Kind: FacePolygon, Verts: top, Normal: topNormal})

		for i := range verts {
			a, b := verts[i], verts[(i+1)%len(verts)]
			normal := b.Sub(a).Cross(s.Sweep).Unit().Scale(sign)
			faces = append(faces, &Face{
				Kind:   FacePolygon,
				Verts:  []geom.Vec3{a, b, b.Add(s.Sweep), a.Add(s.Sweep)},
				Normal: normal,
			})
		}
		return faces
	}
}

// Edges enumerates the solid's edges in deterministic order: bottom rim,
// top rim, then the lateral edges.
func (s *Solid) Edges() []*Edge {
	switch s.Base.Kind {
	case FaceDisk:
		return []*Edge{
			{Kind: EdgeCircle, Center: s.Base.Center, Radius: s.Base.Radius, Normal: s.Base.Normal},
			{Kind: EdgeCircle, Center: s.Base.Center.Add(s.Sweep), Radius: s.Base.Radius, Normal: s.Base.Normal},
		}
	default:
		verts := s.Base.Verts
		edges := make([]*Edge, 0, 3*len(verts))
		for i := range verts {
			edges = append(edges, &Edge{Kind: EdgeSegment, A: verts[i], B: verts[(i+1)%len(verts)]})
		}
		for i := range verts {
			a, b := verts[i].Add(s.Sweep), verts[(i+1)%len(verts)].Add(s.Sweep)
			edges = append(edges, &Edge{Kind: EdgeSegment, A: a, B: b})
		}
		for _, v := range verts {
			edges = append(edges, &Edge{Kind: EdgeSegment, A: v, B: v.Add(s.Sweep)})
		}
		return edges
	}
}

// Faces exposes the kernel enumeration contract over any shape.
func (k *Kernel) Faces(s *Solid) []*Face { return s.Faces() }

// Edges exposes the kernel enumeration contract over any shape.
func (k *Kernel) Edges(s *Solid) []*Edge { return s.Edges() }
