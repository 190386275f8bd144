package kernel

import (
	"encoding/json"
	"fmt"
)

// shapeEnvelope tags a serialized shape with its concrete kind so it can be
// decoded back into the right type.
type shapeEnvelope struct {
	Kind  ShapeKind       `json:"kind"`
	Shape json.RawMessage `json:"shape"`
}

// MarshalShape serializes a shape for storage.
func MarshalShape(s Shape) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(shapeEnvelope{Kind: s.ShapeKind(), Shape: raw})
}

// UnmarshalShape restores a shape serialized by MarshalShape.
func UnmarshalShape(data []byte) (Shape, error) {
	var env shapeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	var s Shape
	switch env.Kind {
	case ShapeSolid:
		s = &Solid{}
	case ShapeFace:
		s = &Face{}
	case ShapeEdge:
		s = &Edge{}
	default:
		return nil, fmt.Errorf("unknown shape kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Shape, s); err != nil {
		return nil, err
	}
	return s, nil
}
