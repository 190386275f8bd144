package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/carverlab/facet/pkg/ports"
	"github.com/carverlab/facet/pkg/session"
)

// SessionStoreContractTest is a reusable test suite that verifies if an
// adapter complies with ports.SessionStore.
func SessionStoreContractTest(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-session")
		if !errors.Is(err, session.ErrNotFound) {
			t.Errorf("expected session.ErrNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_Roundtrip", func(t *testing.T) {
		state := session.New("contract-session")
		state.Counter = 3
		state.Shapes["shape:3"] = []byte(`{"kind":"solid","shape":{"base":null,"sweep":{}}}`)

		if err := store.Save(ctx, state.ID, state); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}
		loaded, err := store.Load(ctx, state.ID)
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if loaded.Counter != 3 {
			t.Errorf("expected counter 3, got %d", loaded.Counter)
		}
		if _, ok := loaded.Shapes["shape:3"]; !ok {
			t.Error("shape:3 missing after roundtrip")
		}

		// The loaded state must be isolated from later mutations.
		loaded.Counter = 99
		again, err := store.Load(ctx, state.ID)
		if err != nil {
			t.Fatalf("failed to reload state: %v", err)
		}
		if again.Counter != 3 {
			t.Errorf("store leaked a mutable reference, counter = %d", again.Counter)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "list-a", session.New("list-a")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Save(ctx, "list-b", session.New("list-b")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		lookup := make(map[string]bool, len(ids))
		for _, id := range ids {
			lookup[id] = true
		}
		for _, want := range []string{"list-a", "list-b"} {
			if !lookup[want] {
				t.Errorf("session %s missing from list", want)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Save(ctx, "doomed", session.New("doomed")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Delete(ctx, "doomed"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		_, err := store.Load(ctx, "doomed")
		if !errors.Is(err, session.ErrNotFound) {
			t.Errorf("expected session.ErrNotFound after delete, got %v", err)
		}
	})
}
