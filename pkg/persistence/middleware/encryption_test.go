package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/carverlab/facet/pkg/adapters/memory"
	"github.com/carverlab/facet/pkg/persistence/middleware"
	"github.com/carverlab/facet/pkg/ports/tests"
	"github.com/carverlab/facet/pkg/session"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return key
}

func TestEncryption_Contract(t *testing.T) {
	store := middleware.Chain(
		memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey(t)}),
	)
	tests.SessionStoreContractTest(t, store)
}

func TestEncryption_BackendSeesOnlyCiphertext(t *testing.T) {
	backend := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend)
	ctx := context.Background()

	state := session.New("secret-session")
	state.Counter = 7
	state.Shapes["shape:7"] = []byte(`{"kind":"face","shape":{"kind":"disk","radius":3}}`)
	if err := store.Save(ctx, state.ID, state); err != nil {
		t.Fatal(err)
	}

	raw, err := backend.Load(ctx, state.ID)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Counter != 0 || len(raw.Current.Selections) != 0 {
		t.Error("envelope leaks session content")
	}
	if _, ok := raw.Shapes["shape:7"]; ok {
		t.Error("envelope leaks shape data")
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(blob, []byte("disk")) {
		t.Error("plaintext geometry visible in the backend")
	}

	loaded, err := store.Load(ctx, state.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Counter != 7 {
		t.Errorf("decrypted counter = %d, want 7", loaded.Counter)
	}
	if _, ok := loaded.Shapes["shape:7"]; !ok {
		t.Error("decrypted state lost its shapes")
	}
}

func TestEncryption_KeyRotation(t *testing.T) {
	oldKey, newActive := newKey(t), newKey(t)
	backend := memory.NewStore()
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: oldKey,
	})(backend)
	state := session.New("rotated")
	state.Counter = 4
	if err := oldStore.Save(ctx, state.ID, state); err != nil {
		t.Fatal(err)
	}

	// A store with the rotated key still decrypts old envelopes through the
	// fallback list.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newActive,
		FallbackKeys: [][]byte{oldKey},
	})(backend)
	loaded, err := rotated.Load(ctx, state.ID)
	if err != nil {
		t.Fatalf("rotated store failed to load: %v", err)
	}
	if loaded.Counter != 4 {
		t.Errorf("counter = %d, want 4", loaded.Counter)
	}

	// Without the fallback, the old envelope is unreadable.
	strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newActive,
	})(backend)
	if _, err := strict.Load(ctx, state.ID); err == nil {
		t.Error("load with the wrong key must fail")
	}
}

func TestEncryption_RejectsPlainSessions(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()
	if err := backend.Save(ctx, "plain", session.New("plain")); err != nil {
		t.Fatal(err)
	}

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend)
	if _, err := store.Load(ctx, "plain"); err == nil {
		t.Error("an unencrypted session must not pass through an encrypting store")
	}
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("short key must panic at construction")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
}
