package pmi

import "fmt"

// DatumModifier qualifies how a datum's material boundary is interpreted.
type DatumModifier string

const (
	DatumBasic           DatumModifier = "basic"
	DatumMaximumMaterial DatumModifier = "maximumMaterial"
	DatumLeastMaterial   DatumModifier = "leastMaterial"
)

// ParseDatumModifier maps a wire tag to a datum modifier. Unknown tags are
// rejected.
func ParseDatumModifier(tag string) (DatumModifier, error) {
	switch tag {
	case "MMB":
		return DatumMaximumMaterial, nil
	case "LMB":
		return DatumLeastMaterial, nil
	case "", "BASIC":
		return DatumBasic, nil
	}
	return "", &UnknownModifierError{Context: "datum", Tag: tag}
}

// ToleranceModifier qualifies a tolerance constraint.
type ToleranceModifier string

const (
	TolMaximumMaterial ToleranceModifier = "maximumMaterial"
	TolLeastMaterial   ToleranceModifier = "leastMaterial"
	TolFreeState       ToleranceModifier = "freeState"
	TolTangentPlane    ToleranceModifier = "tangentPlane"
	TolStatistical     ToleranceModifier = "statistical"
)

// ParseToleranceModifier maps a wire tag to a tolerance modifier. Unknown
// tags are rejected, the same policy as datum modifiers.
func ParseToleranceModifier(tag string) (ToleranceModifier, error) {
	switch tag {
	case "MMC":
		return TolMaximumMaterial, nil
	case "LMC":
		return TolLeastMaterial, nil
	case "FREE_STATE":
		return TolFreeState, nil
	case "TANGENT_PLANE":
		return TolTangentPlane, nil
	case "STATISTICAL":
		return TolStatistical, nil
	}
	return "", &UnknownModifierError{Context: "tolerance", Tag: tag}
}

// ToleranceType is the closed set of geometric tolerance classes.
type ToleranceType string

const (
	ToleranceSurfaceProfile   ToleranceType = "surfaceProfile"
	ToleranceFlatness         ToleranceType = "flatness"
	ToleranceParallelism      ToleranceType = "parallelism"
	TolerancePerpendicularity ToleranceType = "perpendicularity"
	TolerancePosition         ToleranceType = "position"
)

// parseToleranceType maps a wire constraint kind to a tolerance type.
// Unrecognized kinds report ok=false; the builder skips them.
func parseToleranceType(kind string) (ToleranceType, bool) {
	switch kind {
	case "constraint.surfaceProfile":
		return ToleranceSurfaceProfile, true
	case "constraint.flatness":
		return ToleranceFlatness, true
	case "constraint.parallelism":
		return ToleranceParallelism, true
	case "constraint.perpendicularity":
		return TolerancePerpendicularity, true
	case "constraint.position":
		return TolerancePosition, true
	}
	return "", false
}

// ZoneShape qualifies the tolerance zone of a position constraint.
type ZoneShape string

// ZoneDiameter marks a cylindrical (diameter) tolerance zone.
const ZoneDiameter ZoneShape = "diameter"

// UnknownModifierError reports a modifier tag outside the closed set.
type UnknownModifierError struct {
	Context string // "datum" or "tolerance"
	Tag     string
}

func (e *UnknownModifierError) Error() string {
	return fmt.Sprintf("unknown %s modifier: %q", e.Context, e.Tag)
}
