package ports

import (
	"context"

	"github.com/carverlab/facet/pkg/session"
)

// SessionStore defines the interface for persisting session state.
// This allows a session to survive restarts and to be shared between
// replicas of the service.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *session.State) error

	// Load retrieves the state for a given session ID.
	// Returns session.ErrNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*session.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all live sessions.
	List(ctx context.Context) ([]string, error)
}
