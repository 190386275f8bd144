package kernel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/carverlab/facet/pkg/geom"
	"github.com/carverlab/facet/pkg/pmi"
)

// Schema identifies a STEP application protocol the writer can emit.
type Schema struct {
	// Name is the short token clients select schemas by, e.g. "AP242DIS".
	Name string
	// Identifier is the FILE_SCHEMA string written into the exchange file.
	Identifier string
}

var (
	schemaOnce  sync.Once
	schemaTable []Schema
)

// Schemas returns the supported application protocols. The table is built
// once and shared; callers must not mutate it.
func Schemas() []Schema {
	schemaOnce.Do(func() {
		schemaTable = []Schema{
			{Name: "AP203", Identifier: "CONFIG_CONTROL_DESIGN"},
			{Name: "AP214CD", Identifier: "AUTOMOTIVE_DESIGN_CC2"},
			{Name: "AP214IS", Identifier: "AUTOMOTIVE_DESIGN"},
			{Name: "AP242DIS", Identifier: "AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF"},
		}
	})
	return schemaTable
}

// DefaultSchemaName selects AP242 when a request names no schema.
const DefaultSchemaName = "AP242DIS"

// ResolveSchema matches a client token against the supported schemas,
// case-insensitively and by substring, so "ap242" and "242dis" both select
// AP242DIS. An empty token selects the default. A token matching nothing is
// passed through verbatim as both name and identifier.
func ResolveSchema(token string) Schema {
	if token == "" {
		token = DefaultSchemaName
	}
	needle := strings.ToLower(token)
	for _, s := range Schemas() {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			return s
		}
	}
	return Schema{Name: token, Identifier: token}
}

// stepWriter accumulates numbered entities of a part 21 exchange file.
type stepWriter struct {
	body strings.Builder
	next int
}

func (w *stepWriter) entity(format string, args ...any) int {
	w.next++
	fmt.Fprintf(&w.body, "#%d=%s;\n", w.next, fmt.Sprintf(format, args...))
	return w.next
}

func stepPoint(v geom.Vec3) string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}

// WriteInterchange serializes a shape, and optionally its annotation graph,
// as an ISO 10303-21 style exchange file. Output is deterministic for a
// given shape, schema, and graph.
func (k *Kernel) WriteInterchange(s Shape, schema Schema, graph *pmi.Graph) ([]byte, error) {
	w := &stepWriter{}

	shapeIDs, err := writeShape(w, s)
	if err != nil {
		return nil, err
	}

	if graph != nil {
		if err := writeAnnotations(w, graph, shapeIDs); err != nil {
			return nil, err
		}
	}

	var out strings.Builder
	out.WriteString("ISO-10303-21;\nHEADER;\n")
	out.WriteString("FILE_DESCRIPTION(('prismatic part'),'2;1');\n")
	out.WriteString("FILE_NAME('part.step','',(''),(''),'facet','','');\n")
	fmt.Fprintf(&out, "FILE_SCHEMA(('%s'));\n", schema.Identifier)
	out.WriteString("ENDSEC;\nDATA;\n")
	out.WriteString(w.body.String())
	out.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")
	return []byte(out.String()), nil
}

// writeShape emits the geometry entities of a shape and returns the entity
// id of each emitted face or edge keyed by its position in enumeration
// order, plus the id of the shape entity itself under index -1.
func writeShape(w *stepWriter, s Shape) (map[int]int, error) {
	ids := make(map[int]int)
	switch sh := s.(type) {
	case *Solid:
		var faceIDs []string
		for i, f := range sh.Faces() {
			id := writeFace(w, f)
			ids[i] = id
			faceIDs = append(faceIDs, fmt.Sprintf("#%d", id))
		}
		shell := w.entity("CLOSED_SHELL('',(%s))", strings.Join(faceIDs, ","))
		ids[-1] = w.entity("MANIFOLD_SOLID_BREP('',#%d)", shell)
	case *Face:
		ids[0] = writeFace(w, sh)
		ids[-1] = ids[0]
	case *Edge:
		ids[0] = writeEdge(w, sh)
		ids[-1] = ids[0]
	default:
		return nil, &OperationError{Op: "write", Reason: fmt.Sprintf("unknown shape %T", s)}
	}
	return ids, nil
}

func writeFace(w *stepWriter, f *Face) int {
	switch f.Kind {
	case FacePolygon:
		var pointIDs []string
		for _, v := range f.Verts {
			id := w.entity("CARTESIAN_POINT('',%s)", stepPoint(v))
			pointIDs = append(pointIDs, fmt.Sprintf("#%d", id))
		}
		loop := w.entity("POLY_LOOP('',(%s))", strings.Join(pointIDs, ","))
		dir := w.entity("DIRECTION('',%s)", stepPoint(f.Normal))
		return w.entity("ADVANCED_FACE('',(#%d),#%d,.T.)", loop, dir)
	case FaceDisk:
		center := w.entity("CARTESIAN_POINT('',%s)", stepPoint(f.Center))
		dir := w.entity("DIRECTION('',%s)", stepPoint(f.Normal))
		rim := w.entity("CIRCLE('',#%d,%g)", center, f.Radius)
		return w.entity("ADVANCED_FACE('',(#%d),#%d,.T.)", rim, dir)
	case FaceTube:
		center := w.entity("CARTESIAN_POINT('',%s)", stepPoint(f.Center))
		axis := w.entity("DIRECTION('',%s)", stepPoint(f.Sweep))
		surf := w.entity("CYLINDRICAL_SURFACE('',#%d,%g)", center, f.Radius)
		return w.entity("ADVANCED_FACE('',(#%d),#%d,.T.)", surf, axis)
	}
	return w.entity("ADVANCED_FACE('',(),$,.T.)")
}

func writeEdge(w *stepWriter, e *Edge) int {
	switch e.Kind {
	case EdgeSegment:
		a := w.entity("CARTESIAN_POINT('',%s)", stepPoint(e.A))
		b := w.entity("CARTESIAN_POINT('',%s)", stepPoint(e.B))
		return w.entity("EDGE_CURVE('',#%d,#%d,$,.T.)", a, b)
	case EdgeCircle:
		center := w.entity("CARTESIAN_POINT('',%s)", stepPoint(e.Center))
		return w.entity("CIRCLE('',#%d,%g)", center, e.Radius)
	}
	return w.entity("EDGE_CURVE('',$,$,$,.T.)")
}

var toleranceEntity = map[pmi.ToleranceType]string{
	pmi.ToleranceSurfaceProfile:   "SURFACE_PROFILE_TOLERANCE",
	pmi.ToleranceFlatness:         "FLATNESS_TOLERANCE",
	pmi.ToleranceParallelism:      "PARALLELISM_TOLERANCE",
	pmi.TolerancePerpendicularity: "PERPENDICULARITY_TOLERANCE",
	pmi.TolerancePosition:         "POSITION_TOLERANCE",
}

var datumModifierTag = map[pmi.DatumModifier]string{
	pmi.DatumBasic:           "BASIC",
	pmi.DatumMaximumMaterial: "MAXIMUM_MATERIAL_REQUIREMENT",
	pmi.DatumLeastMaterial:   "LEAST_MATERIAL_REQUIREMENT",
}

var toleranceModifierTag = map[pmi.ToleranceModifier]string{
	pmi.TolMaximumMaterial: "MAXIMUM_MATERIAL_REQUIREMENT",
	pmi.TolLeastMaterial:   "LEAST_MATERIAL_REQUIREMENT",
	pmi.TolFreeState:       "FREE_STATE",
	pmi.TolTangentPlane:    "TANGENT_PLANE",
	pmi.TolStatistical:     "STATISTICAL_TOLERANCE",
}

// writeAnnotations emits the datum and tolerance entities of the graph.
// Each annotation target is written as a fresh DATUM_FEATURE against the
// part geometry; resolving annotation handles back to the entity ids of
// the b-rep faces is out of scope for this writer.
func writeAnnotations(w *stepWriter, graph *pmi.Graph, shapeIDs map[int]int) error {
	part := shapeIDs[-1]

	datumIDs := make(map[string]int, len(graph.Datums))
	for _, d := range graph.Datums {
		feature := w.entity("DATUM_FEATURE('%s',#%d)", d.Target.Handle, part)
		var mods []string
		for _, m := range d.Modifiers {
			mods = append(mods, datumModifierTag[m])
		}
		id := w.entity("DATUM('%s','%s',#%d,(%s))", d.Label, d.ID, feature, strings.Join(mods, ","))
		datumIDs[d.ID] = id
	}

	for _, t := range graph.Tolerances {
		entity, ok := toleranceEntity[t.Type]
		if !ok {
			return &OperationError{Op: "write", Reason: fmt.Sprintf("unknown tolerance type %q", t.Type)}
		}
		feature := w.entity("DATUM_FEATURE('%s',#%d)", t.Target.Handle, part)
		var refs []string
		for _, d := range t.Datums {
			refs = append(refs, fmt.Sprintf("#%d", datumIDs[d.ID]))
		}
		zone := ""
		if t.Zone == pmi.ZoneDiameter {
			zone = ",CYLINDRICAL_ZONE"
		}
		var mods []string
		for _, m := range t.Modifiers {
			mods = append(mods, toleranceModifierTag[m])
		}
		w.entity("%s('',LENGTH_MEASURE(%g),#%d,(%s),(%s)%s)",
			entity, t.Value, feature, strings.Join(refs, ","), strings.Join(mods, ","), zone)
	}
	return nil
}
