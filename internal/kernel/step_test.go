package kernel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/pmi"
)

func TestResolveSchema(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"", "AP242DIS"},
		{"AP242DIS", "AP242DIS"},
		{"ap242", "AP242DIS"},
		{"242dis", "AP242DIS"},
		{"AP203", "AP203"},
		{"ap214cd", "AP214CD"},
		{"214is", "AP214IS"},
	}
	for _, tc := range cases {
		got := ResolveSchema(tc.token)
		if got.Name != tc.want {
			t.Errorf("ResolveSchema(%q).Name = %q, want %q", tc.token, got.Name, tc.want)
		}
		if got.Identifier == "" {
			t.Errorf("ResolveSchema(%q) has no identifier", tc.token)
		}
	}
}

func TestResolveSchemaPassthrough(t *testing.T) {
	got := ResolveSchema("AP238")
	if got.Name != "AP238" || got.Identifier != "AP238" {
		t.Errorf("unmatched token must pass through verbatim, got %+v", got)
	}
}

func TestSchemaIdentifiers(t *testing.T) {
	want := map[string]string{
		"AP203":    "CONFIG_CONTROL_DESIGN",
		"AP214CD":  "AUTOMOTIVE_DESIGN_CC2",
		"AP214IS":  "AUTOMOTIVE_DESIGN",
		"AP242DIS": "AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF",
	}
	schemas := Schemas()
	if len(schemas) != len(want) {
		t.Fatalf("Schemas() has %d entries, want %d", len(schemas), len(want))
	}
	for _, s := range schemas {
		if want[s.Name] != s.Identifier {
			t.Errorf("schema %s identifier %q, want %q", s.Name, s.Identifier, want[s.Name])
		}
	}
}

func TestWriteInterchange(t *testing.T) {
	k := New()
	solid := block(t, 10, 10, 5)

	data, err := k.WriteInterchange(solid, ResolveSchema("AP203"), nil)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"ISO-10303-21;",
		"FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));",
		"MANIFOLD_SOLID_BREP",
		"CLOSED_SHELL",
		"END-ISO-10303-21;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := strings.Count(out, "ADVANCED_FACE"); got != 6 {
		t.Errorf("output has %d ADVANCED_FACE entities, want 6", got)
	}

	again, err := k.WriteInterchange(solid, ResolveSchema("AP203"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("interchange output is not deterministic")
	}
}

func TestWriteInterchangeWithAnnotations(t *testing.T) {
	k := New()
	solid := block(t, 10, 10, 5)

	datum := &pmi.DatumRecord{
		ID:        "A",
		Label:     "A",
		Modifiers: []pmi.DatumModifier{pmi.DatumMaximumMaterial},
		Target:    pmi.Target{Handle: "shape:2"},
	}
	graph := &pmi.Graph{
		Datums: []*pmi.DatumRecord{datum},
		Tolerances: []*pmi.ToleranceRecord{
			{
				Type:   pmi.ToleranceFlatness,
				Value:  0.05,
				Target: pmi.Target{Handle: "shape:3"},
			},
			{
				Type:      pmi.TolerancePosition,
				Value:     0.1,
				Zone:      pmi.ZoneDiameter,
				Modifiers: []pmi.ToleranceModifier{pmi.TolMaximumMaterial},
				Target:    pmi.Target{Handle: "shape:3"},
				Datums:    []*pmi.DatumRecord{datum},
			},
		},
	}

	data, err := k.WriteInterchange(solid, ResolveSchema(""), graph)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"FILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));",
		"DATUM_FEATURE('shape:2'",
		"DATUM('A','A'",
		"MAXIMUM_MATERIAL_REQUIREMENT",
		"FLATNESS_TOLERANCE('',LENGTH_MEASURE(0.05)",
		"POSITION_TOLERANCE('',LENGTH_MEASURE(0.1)",
		"CYLINDRICAL_ZONE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestWriteInterchangeSingleFace(t *testing.T) {
	k := New()
	base, err := k.BuildProfile(feature.Rectangle{Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	data, err := k.WriteInterchange(base, ResolveSchema(""), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "POLY_LOOP") {
		t.Error("face output missing POLY_LOOP")
	}
	if strings.Contains(string(data), "MANIFOLD_SOLID_BREP") {
		t.Error("face output must not contain solid entities")
	}
}
