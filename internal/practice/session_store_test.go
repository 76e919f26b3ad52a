package practice

import (
	"context"
	"errors"
	"testing"
	"time"

	"wordspark-backend/internal/learning"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	sess := StoredSession{
		OwnerID: 7,
		ListID:  3,
		Snapshot: learning.Snapshot{
			UserID:  7,
			SetID:   3,
			Pointer: -1,
			State:   learning.StatePresenting,
		},
	}
	if err := store.Put(ctx, "abc", sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != 7 || got.ListID != 3 || got.Snapshot.State != learning.StatePresenting {
		t.Fatalf("got %+v", got)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("after delete: got %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(-time.Second) // everything is born expired

	if err := store.Put(ctx, "old", StoredSession{OwnerID: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired get: got %v, want ErrSessionNotFound", err)
	}

	if err := store.Put(ctx, "old2", StoredSession{OwnerID: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}
