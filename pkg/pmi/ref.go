package pmi

import (
	"errors"
	"fmt"

	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/selector"
)

// RefKind is the semantic kind a geometry reference expects to resolve to.
type RefKind string

const (
	RefSurface RefKind = "surface"
	RefEdge    RefKind = "edge"
	RefAxis    RefKind = "axis"
	RefPoint   RefKind = "point"
	RefFrame   RefKind = "frame"
)

// Ref is a typed reference to a geometric element: a selector plus the
// element kind the caller expects it to produce.
type Ref struct {
	Kind     RefKind
	Selector selector.Selector
}

// HandleResolver resolves an opaque element handle to the kernel object it
// was registered with. Implemented by the session's handle registry.
type HandleResolver interface {
	ResolveHandle(handle string) (any, error)
}

// Target is a fully resolved reference: the selected element, its handle,
// and the kernel object behind it.
type Target struct {
	Element model.Element
	Handle  string
	Object  any
}

// ErrMissingHandle is returned when a resolved element carries no handle
// metadata and therefore cannot be tied back to a kernel object.
var ErrMissingHandle = errors.New("selection is missing handle metadata")

// TypeMismatchError reports a reference whose selector resolved to an
// element of the wrong kind.
type TypeMismatchError struct {
	Expected RefKind
	Got      model.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("reference expects a %s but selector resolved a %s", e.Expected, e.Got)
}

// UnsupportedRefError reports a reference kind that is reserved but not yet
// resolvable.
type UnsupportedRefError struct {
	Kind RefKind
}

func (e *UnsupportedRefError) Error() string {
	return fmt.Sprintf("unsupported geometry reference kind: %q", e.Kind)
}

// ResolveRef resolves a typed reference against the result model: the
// selector picks the element, the expected kind is checked, and the
// element's handle is resolved to its kernel object.
//
// Surface references must resolve to faces and edge references to edges.
// Axis, point, and frame references are reserved for future extension and
// fail explicitly rather than being approximated.
func ResolveRef(ref Ref, res model.Result, handles HandleResolver) (Target, error) {
	switch ref.Kind {
	case RefSurface, RefEdge:
	case RefAxis, RefPoint, RefFrame:
		return Target{}, &UnsupportedRefError{Kind: ref.Kind}
	default:
		return Target{}, &UnsupportedRefError{Kind: ref.Kind}
	}

	el, err := selector.Resolve(ref.Selector, res)
	if err != nil {
		return Target{}, err
	}
	if ref.Kind == RefSurface && el.Kind != model.KindFace {
		return Target{}, &TypeMismatchError{Expected: RefSurface, Got: el.Kind}
	}
	if ref.Kind == RefEdge && el.Kind != model.KindEdge {
		return Target{}, &TypeMismatchError{Expected: RefEdge, Got: el.Kind}
	}

	handle := el.Meta.String(model.KeyHandle)
	if handle == "" {
		return Target{}, ErrMissingHandle
	}
	obj, err := handles.ResolveHandle(handle)
	if err != nil {
		return Target{}, err
	}
	return Target{Element: el, Handle: handle, Object: obj}, nil
}
