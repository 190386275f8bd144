package geom

import "math"

// Direction is a canonical axis-direction token. Selectors compare face
// normals against these tokens rather than raw vectors.
type Direction string

const (
	PlusX  Direction = "+X"
	MinusX Direction = "-X"
	PlusY  Direction = "+Y"
	MinusY Direction = "-Y"
	PlusZ  Direction = "+Z"
	MinusZ Direction = "-Z"
)

// snapThreshold is the minimum dominant-component magnitude of a unit
// vector for it to snap to an axis direction.
const snapThreshold = 0.9

// SnapDirection snaps a unit normal to the nearest axis direction.
// Vectors whose dominant component is below the threshold are
// indeterminate and report ok=false. Exact ties prefer X over Y over Z.
func SnapDirection(v Vec3) (Direction, bool) {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	if math.Max(ax, math.Max(ay, az)) < snapThreshold {
		return "", false
	}
	switch {
	case ax >= ay && ax >= az:
		if v.X >= 0 {
			return PlusX, true
		}
		return MinusX, true
	case ay >= ax && ay >= az:
		if v.Y >= 0 {
			return PlusY, true
		}
		return MinusY, true
	default:
		if v.Z >= 0 {
			return PlusZ, true
		}
		return MinusZ, true
	}
}

// DirectionVector returns the unit vector for a direction token.
// Unknown tokens report ok=false.
func DirectionVector(d Direction) (Vec3, bool) {
	switch d {
	case PlusX:
		return Vec3{X: 1}, true
	case MinusX:
		return Vec3{X: -1}, true
	case PlusY:
		return Vec3{Y: 1}, true
	case MinusY:
		return Vec3{Y: -1}, true
	case PlusZ:
		return Vec3{Z: 1}, true
	case MinusZ:
		return Vec3{Z: -1}, true
	}
	return Vec3{}, false
}
