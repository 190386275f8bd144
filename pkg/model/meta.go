package model

import "github.com/carverlab/facet/pkg/geom"

// Well-known metadata keys. Features populate these when collecting the
// elements they created; selectors and the reference resolver read them.
// Consumers must tolerate and preserve keys they do not know.
const (
	KeyHandle      = "handle"
	KeyOwnerHandle = "ownerHandle"
	KeyOwnerKey    = "ownerKey"
	KeyCreatedBy   = "createdBy"
	KeyRole        = "role"
	KeyPlanar      = "planar"
	KeyArea        = "area"
	KeyCenter      = "center"
	KeyCenterZ     = "centerZ"
	KeyNormal      = "normal"
	KeyNormalVec   = "normalVec"
	KeyFeatureTags = "featureTags"
)

// Meta is the flexible attribute bag attached to elements and outputs.
// Values may originate from JSON decoding, so the accessors below tolerate
// the loosely typed forms that produces ([]any, float64).
type Meta map[string]any

// String returns the string value for key, or "" if absent or not a string.
func (m Meta) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool returns the bool value for key, defaulting to false.
func (m Meta) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Float returns the numeric value for key, defaulting to 0.
func (m Meta) Float(key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Vec3 reads a 3-vector stored as [x, y, z]. ok is false when the key is
// absent or the value is not a 3-element numeric array.
func (m Meta) Vec3(key string) (geom.Vec3, bool) {
	toFloat := func(v any) (float64, bool) {
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return 0, false
	}

	var elems []any
	switch v := m[key].(type) {
	case []any:
		elems = v
	case []float64:
		if len(v) < 3 {
			return geom.Vec3{}, false
		}
		return geom.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
	default:
		return geom.Vec3{}, false
	}
	if len(elems) < 3 {
		return geom.Vec3{}, false
	}
	x, okX := toFloat(elems[0])
	y, okY := toFloat(elems[1])
	z, okZ := toFloat(elems[2])
	if !okX || !okY || !okZ {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: x, Y: y, Z: z}, true
}

// Has reports whether key is present.
func (m Meta) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Clone returns a shallow copy of the bag. Values are shared; callers that
// rewrite nested values must copy them first.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
