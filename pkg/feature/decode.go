package feature

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/carverlab/facet/pkg/geom"
)

// Wire kind tokens.
const (
	wireExtrude = "feature.extrude"

	wireProfileRect   = "profile.rectangle"
	wireProfileCircle = "profile.circle"
	wireProfilePoly   = "profile.poly"
	wireProfileRef    = "profile.ref"

	wireAxisVector       = "axis.vector"
	wireAxisSketchNormal = "axis.sketch.normal"

	wireExprLiteral = "expr.literal"
)

type wireFeature struct {
	ID      string         `mapstructure:"id"`
	Kind    string         `mapstructure:"kind"`
	Profile map[string]any `mapstructure:"profile"`
	Depth   any            `mapstructure:"depth"`
	Axis    any            `mapstructure:"axis"`
	Result  string         `mapstructure:"result"`
	Tags    []string       `mapstructure:"tags"`
}

type wireProfile struct {
	Kind     string `mapstructure:"kind"`
	Width    any    `mapstructure:"width"`
	Height   any    `mapstructure:"height"`
	Radius   any    `mapstructure:"radius"`
	Sides    any    `mapstructure:"sides"`
	Rotation any    `mapstructure:"rotation"`
	Center   []any  `mapstructure:"center"`
}

type wireAxis struct {
	Kind      string `mapstructure:"kind"`
	Direction []any  `mapstructure:"direction"`
}

// Parse decodes a feature from its wire map form, applying the defaults the
// protocol allows clients to omit: id "feature", result key "body:main",
// extrusion axis +Z.
func Parse(raw map[string]any) (Feature, error) {
	var w wireFeature
	if err := mapstructure.Decode(raw, &w); err != nil {
		return Feature{}, fmt.Errorf("decode feature: %w", err)
	}

	if w.Kind != wireExtrude {
		return Feature{}, &UnsupportedKindError{Kind: w.Kind}
	}

	profile, err := parseProfile(w.Profile)
	if err != nil {
		return Feature{}, err
	}

	if s, ok := w.Depth.(string); ok && s == "throughAll" {
		return Feature{}, ErrThroughAllUnsupported
	}
	depth := scalar(w.Depth, 0)

	axis, err := parseAxis(w.Axis)
	if err != nil {
		return Feature{}, err
	}

	f := Feature{
		ID:        w.ID,
		Kind:      KindExtrude,
		Profile:   profile,
		Axis:      axis,
		Depth:     depth,
		ResultKey: w.Result,
		Tags:      w.Tags,
	}
	if f.ID == "" {
		f.ID = "feature"
	}
	if f.ResultKey == "" {
		f.ResultKey = DefaultResultKey
	}
	return f, nil
}

func parseProfile(raw map[string]any) (Profile, error) {
	var w wireProfile
	if err := mapstructure.Decode(raw, &w); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	center := point2D(w.Center)
	switch w.Kind {
	case wireProfileRect:
		return Rectangle{
			Width:  scalar(w.Width, 0),
			Height: scalar(w.Height, 0),
			Center: center,
		}, nil
	case wireProfileCircle:
		return Circle{
			Radius: scalar(w.Radius, 0),
			Center: center,
		}, nil
	case wireProfilePoly:
		return Polygon{
			Sides:    int(scalar(w.Sides, 0)),
			Radius:   scalar(w.Radius, 0),
			Center:   center,
			Rotation: scalar(w.Rotation, 0),
		}, nil
	case wireProfileRef:
		return nil, ErrProfileRefUnsupported
	}
	return nil, &InvalidProfileError{Reason: fmt.Sprintf("unsupported profile kind %q", w.Kind)}
}

// parseAxis accepts an axis-direction token, an axis.vector object, or
// axis.sketch.normal. A missing or zero axis falls back to +Z; the result is
// always a unit vector.
func parseAxis(raw any) (geom.Vec3, error) {
	up := geom.Vec3{Z: 1}
	switch v := raw.(type) {
	case nil:
		return up, nil
	case string:
		if dir, ok := geom.DirectionVector(geom.Direction(v)); ok {
			return dir, nil
		}
		return up, nil
	case map[string]any:
		var w wireAxis
		if err := mapstructure.Decode(v, &w); err != nil {
			return geom.Vec3{}, fmt.Errorf("decode axis: %w", err)
		}
		switch w.Kind {
		case wireAxisVector:
			if len(w.Direction) < 3 {
				return up, nil
			}
			axis := geom.Vec3{
				X: scalar(w.Direction[0], 0),
				Y: scalar(w.Direction[1], 0),
				Z: scalar(w.Direction[2], 0),
			}
			if axis.Norm() == 0 {
				return up, nil
			}
			return axis.Unit(), nil
		case wireAxisSketchNormal:
			return up, nil
		}
	}
	return up, nil
}

// scalar reads a numeric wire value: a bare number or an expr.literal
// envelope. Anything else yields the fallback.
func scalar(raw any, fallback float64) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case map[string]any:
		if kind, _ := v["kind"].(string); kind == wireExprLiteral {
			return scalar(v["value"], fallback)
		}
	}
	return fallback
}

func point2D(raw []any) geom.Vec3 {
	if len(raw) < 2 {
		return geom.Vec3{}
	}
	return geom.Vec3{X: scalar(raw[0], 0), Y: scalar(raw[1], 0)}
}
