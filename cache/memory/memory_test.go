package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/intelliquiz/iqclient/cache"
)

func TestStoreSetGetDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Set(ctx, "token", []byte("abc"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("Get() = %q, want %q", got, "abc")
	}

	if err := store.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "token"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "token"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStoreTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewStore()
	store.SetNowFunc(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len = %d", store.Len())
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	value := []byte("roles")
	_ = store.Set(ctx, "roles", value, 0)
	value[0] = 'X'

	got, _ := store.Get(ctx, "roles")
	if string(got) != "roles" {
		t.Fatalf("stored value mutated through caller slice: %q", got)
	}
}

func TestStoreHonoursCanceledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreExpiryKeepsConcurrentWrite(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	var refresh bool
	store.SetNowFunc(func() time.Time {
		if refresh {
			// A writer replaces the entry between the expired read and the eviction.
			refresh = false
			store.entries["token"] = entry{value: []byte("fresh")}
		}
		return now
	})

	if err := store.Set(ctx, "token", []byte("stale"), time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	now = now.Add(2 * time.Second)
	refresh = true

	if _, err := store.Get(ctx, "token"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("Get() of expired entry error = %v, want ErrNotFound", err)
	}
	got, err := store.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "fresh" {
		t.Fatalf("Get() = %q, want %q", got, "fresh")
	}
}
