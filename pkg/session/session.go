// Package session defines the persistent snapshot of a modeling session.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/carverlab/facet/pkg/model"
)

// ErrNotFound is returned when a session ID cannot be found in the store.
var ErrNotFound = errors.New("session not found")

// State is the full snapshot of a modeling session: the handle counter, the
// shapes issued so far in serialized form, and the current result model.
// Everything is plain data so any store backend can persist it.
type State struct {
	// ID identifies the session.
	ID string `json:"id"`

	// Counter is the last issued shape handle number.
	Counter int `json:"counter"`

	// Shapes maps each issued handle to its serialized kernel shape.
	Shapes map[string]json.RawMessage `json:"shapes"`

	// Current is the composed result model of the session so far.
	Current model.Result `json:"current"`

	// UpdatedAt records the last successful mutation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty session state.
func New(id string) *State {
	return &State{
		ID:      id,
		Shapes:  make(map[string]json.RawMessage),
		Current: model.NewResult(),
	}
}
