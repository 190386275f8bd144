// Package memory provides an in-process session store, the default backend
// for single-instance deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/carverlab/facet/pkg/session"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store implements ports.SessionStore in memory. States are kept in
// serialized form so callers never share references with the store.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

type Option func(*Store)

// WithTTL evicts sessions that have not been saved within ttl. Zero means
// sessions never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the state in memory.
func (s *Store) Save(ctx context.Context, sessionID string, state *session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = entry{data: data, expiresAt: expiresAt}
	return nil
}

// Load retrieves the state from memory. Expired sessions report
// session.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) (*session.State, error) {
	s.mu.RLock()
	e, ok := s.data[sessionID]
	s.mu.RUnlock()

	if !ok || e.expired(s.now()) {
		return nil, session.ErrNotFound
	}

	var state session.State
	if err := json.Unmarshal(e.data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions, pruning any that have expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if e.expired(now) {
			delete(s.data, id)
			continue
		}
		sessions = append(sessions, id)
	}
	return sessions, nil
}
