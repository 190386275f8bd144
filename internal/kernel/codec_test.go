package kernel

import (
	"testing"

	"github.com/carverlab/facet/pkg/geom"
)

func TestShapeCodecRoundtrip(t *testing.T) {
	shapes := []Shape{
		block(t, 10, 10, 5),
		&Face{Kind: FaceDisk, Center: geom.Vec3{X: 1, Y: 2}, Radius: 3, Normal: geom.Vec3{Z: 1}},
		&Edge{Kind: EdgeSegment, A: geom.Vec3{}, B: geom.Vec3{X: 1, Y: 1, Z: 1}},
		&Edge{Kind: EdgeCircle, Center: geom.Vec3{Z: 5}, Radius: 2, Normal: geom.Vec3{Z: 1}},
	}

	for _, s := range shapes {
		data, err := MarshalShape(s)
		if err != nil {
			t.Fatalf("MarshalShape(%v): %v", s.ShapeKind(), err)
		}
		back, err := UnmarshalShape(data)
		if err != nil {
			t.Fatalf("UnmarshalShape(%v): %v", s.ShapeKind(), err)
		}
		if back.ShapeKind() != s.ShapeKind() {
			t.Errorf("roundtrip changed kind: %v -> %v", s.ShapeKind(), back.ShapeKind())
		}
		if got, want := back.Bounds(), s.Bounds(); got != want {
			t.Errorf("%v roundtrip changed bounds: %+v -> %+v", s.ShapeKind(), want, got)
		}
	}
}

func TestShapeCodecSolidGeometry(t *testing.T) {
	solid := block(t, 10, 4, 5)
	data, err := MarshalShape(solid)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalShape(data)
	if err != nil {
		t.Fatal(err)
	}
	restored, ok := back.(*Solid)
	if !ok {
		t.Fatalf("restored shape is %T, want *Solid", back)
	}
	if len(restored.Faces()) != len(solid.Faces()) {
		t.Errorf("restored solid has %d faces, want %d", len(restored.Faces()), len(solid.Faces()))
	}
	if restored.Sweep != solid.Sweep {
		t.Errorf("restored sweep %v, want %v", restored.Sweep, solid.Sweep)
	}
}

func TestUnmarshalShapeRejectsUnknownKind(t *testing.T) {
	if _, err := UnmarshalShape([]byte(`{"kind":"torus","shape":{}}`)); err == nil {
		t.Error("unknown shape kind must fail")
	}
	if _, err := UnmarshalShape([]byte(`not json`)); err == nil {
		t.Error("malformed envelope must fail")
	}
}
