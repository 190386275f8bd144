package geom

import "testing"

func TestSnapDirection(t *testing.T) {
	cases := []struct {
		name string
		v    Vec3
		want Direction
		ok   bool
	}{
		{"up", Vec3{0, 0, 1}, PlusZ, true},
		{"down", Vec3{0, 0, -1}, MinusZ, true},
		{"east", Vec3{1, 0, 0}, PlusX, true},
		{"west", Vec3{-1, 0, 0}, MinusX, true},
		{"north", Vec3{0, 1, 0}, PlusY, true},
		{"south", Vec3{0, -1, 0}, MinusY, true},
		{"slightly tilted", Vec3{0.1, 0.1, 0.98}, PlusZ, true},
		{"diagonal", Vec3{0.7071, 0.7071, 0}, "", false},
		{"zero", Vec3{}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SnapDirection(tc.v)
			if ok != tc.ok || got != tc.want {
				t.Errorf("SnapDirection(%v) = (%q, %v), want (%q, %v)", tc.v, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDirectionVectorRoundtrip(t *testing.T) {
	for _, d := range []Direction{PlusX, MinusX, PlusY, MinusY, PlusZ, MinusZ} {
		v, ok := DirectionVector(d)
		if !ok {
			t.Fatalf("DirectionVector(%q) not ok", d)
		}
		got, ok := SnapDirection(v)
		if !ok || got != d {
			t.Errorf("roundtrip %q: got (%q, %v)", d, got, ok)
		}
	}

	if _, ok := DirectionVector("sideways"); ok {
		t.Error("unknown direction token should not resolve")
	}
}
