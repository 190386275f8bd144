// Package registry issues opaque handles for kernel shapes and resolves
// them back. Each modeling session owns one registry; its contents snapshot
// to plain data so the session store can persist them.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/carverlab/facet/internal/kernel"
)

// UnknownHandleError reports a handle the registry never issued or whose
// shape has been dropped.
type UnknownHandleError struct {
	Handle string
}

func (e *UnknownHandleError) Error() string {
	return fmt.Sprintf("unknown shape handle: %q", e.Handle)
}

// Registry maps handles of the form "shape:N" to kernel shapes. Safe for
// concurrent use.
type Registry struct {
	mu     sync.Mutex
	next   int
	shapes map[string]kernel.Shape
}

// New returns an empty registry. The first issued handle is "shape:1".
func New() *Registry {
	return &Registry{shapes: make(map[string]kernel.Shape)}
}

// Register stores a shape and returns its handle.
func (r *Registry) Register(s kernel.Shape) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	handle := fmt.Sprintf("shape:%d", r.next)
	r.shapes[handle] = s
	return handle
}

// Resolve returns the shape behind a handle.
func (r *Registry) Resolve(handle string) (kernel.Shape, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shapes[handle]
	if !ok {
		return nil, &UnknownHandleError{Handle: handle}
	}
	return s, nil
}

// ResolveHandle adapts Resolve to the annotation resolver contract.
func (r *Registry) ResolveHandle(handle string) (any, error) {
	return r.Resolve(handle)
}

// Len reports the number of registered shapes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shapes)
}

// Snapshot is the serializable form of a registry.
type Snapshot struct {
	Next   int                        `json:"next"`
	Shapes map[string]json.RawMessage `json:"shapes"`
}

// Snapshot serializes the registry contents.
func (r *Registry) Snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{Next: r.next, Shapes: make(map[string]json.RawMessage, len(r.shapes))}
	for handle, s := range r.shapes {
		raw, err := kernel.MarshalShape(s)
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot %s: %w", handle, err)
		}
		snap.Shapes[handle] = raw
	}
	return snap, nil
}

// Restore rebuilds a registry from a snapshot. A zero snapshot restores an
// empty registry.
func Restore(snap Snapshot) (*Registry, error) {
	r := New()
	r.next = snap.Next
	for handle, raw := range snap.Shapes {
		s, err := kernel.UnmarshalShape(raw)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", handle, err)
		}
		r.shapes[handle] = s
	}
	return r, nil
}
