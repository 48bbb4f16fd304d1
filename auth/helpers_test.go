package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/intelliquiz/iqclient/cache"
	"github.com/intelliquiz/iqclient/cache/memory"
)

var testSecret = []byte("intelliquiz-test-secret-intelliquiz-test-secret-0123456789abcdef")

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return raw
}

func tokenExpiringAt(t *testing.T, exp time.Time, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "alice", "iat": exp.Add(-time.Hour).Unix(), "exp": exp.Unix()}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	return mintToken(t, claims)
}

func newTestStore(t *testing.T, location string) (*Store, *memory.Store, *Tracker) {
	t.Helper()
	kv := memory.NewStore()
	nav := NewTracker(location)
	store := NewStore(kv, nav)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	return store, kv, nav
}

func assertMissing(t *testing.T, kv cache.Store, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, err := kv.Get(context.Background(), key); !errors.Is(err, cache.ErrNotFound) {
			t.Fatalf("key %q still present (err = %v)", key, err)
		}
	}
}

// brokenKV fails every operation.
type brokenKV struct{ err error }

func (b brokenKV) Get(context.Context, string) ([]byte, error)              { return nil, b.err }
func (b brokenKV) Set(context.Context, string, []byte, time.Duration) error { return b.err }
func (b brokenKV) Delete(context.Context, string) error                     { return b.err }
