package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notjagan/dexweb/pkg/cache"
)

type payload struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()

	store, err := cache.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestPutThenGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	want := payload{Name: "bulbasaur", ID: 1}
	if err := store.Put(ctx, "detail:1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got payload
	if err := store.Get(ctx, "detail:1", time.Minute, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := newStore(t)

	var got payload
	err := store.Get(context.Background(), "detail:404", time.Minute, &got)
	if !errors.Is(err, cache.ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	if err := store.Put(ctx, "index", payload{Name: "index"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got payload
	current = current.Add(4 * time.Minute)
	if err := store.Get(ctx, "index", 5*time.Minute, &got); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	current = current.Add(2 * time.Minute)
	err := store.Get(ctx, "index", 5*time.Minute, &got)
	if !errors.Is(err, cache.ErrMiss) {
		t.Errorf("expected ErrMiss after window elapsed, got %v", err)
	}

	// A longer window still accepts the same entry.
	if err := store.Get(ctx, "index", 24*time.Hour, &got); err != nil {
		t.Errorf("Get with list window: %v", err)
	}
}

func TestOverwriteResetsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	if err := store.Put(ctx, "detail:7", payload{Name: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	current = current.Add(10 * time.Minute)
	if err := store.Put(ctx, "detail:7", payload{Name: "new"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got payload
	if err := store.Get(ctx, "detail:7", 5*time.Minute, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "new" {
		t.Errorf("Name = %q, want %q", got.Name, "new")
	}
}

func TestContainsAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	ok, err := store.Contains(ctx, "detail:3", time.Minute)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Error("expected empty store not to contain key")
	}

	if err := store.Put(ctx, "detail:3", payload{ID: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err = store.Contains(ctx, "detail:3", time.Minute)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Error("expected store to contain fresh key")
	}

	if err := store.Invalidate(ctx, "detail:3"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	var got payload
	err = store.Get(ctx, "detail:3", time.Minute, &got)
	if !errors.Is(err, cache.ErrMiss) {
		t.Errorf("expected ErrMiss after invalidation, got %v", err)
	}
}
