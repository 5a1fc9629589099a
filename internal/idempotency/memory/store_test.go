package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/ports"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil for unknown key", func(t *testing.T) {
		store := NewStore(0)
		got, err := store.Get(ctx, "missing")
		if err != nil || got != nil {
			t.Errorf("expected nil response, got %v err=%v", got, err)
		}
	})

	t.Run("keeps the first response for a key", func(t *testing.T) {
		store := NewStore(0)
		_ = store.Save(ctx, "k", ports.StoredResponse{StatusCode: 200, Body: []byte(`{"status":"added"}`), ResourceID: "1"})
		_ = store.Save(ctx, "k", ports.StoredResponse{StatusCode: 404, ResourceID: "2"})

		got, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.StatusCode != 200 || got.ResourceID != "1" {
			t.Errorf("expected first response to be preserved, got %+v", got)
		}
	})

	t.Run("expires entries after ttl", func(t *testing.T) {
		now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
		store := NewStore(time.Minute)
		store.now = func() time.Time { return now }

		_ = store.Save(ctx, "k", ports.StoredResponse{StatusCode: 200})

		now = now.Add(2 * time.Minute)
		if got, _ := store.Get(ctx, "k"); got != nil {
			t.Errorf("expected expired entry to be ignored, got %+v", got)
		}

		_ = store.Save(ctx, "k", ports.StoredResponse{StatusCode: 201})
		if got, _ := store.Get(ctx, "k"); got == nil || got.StatusCode != 201 {
			t.Errorf("expected replacement after expiry, got %+v", got)
		}
	})

	t.Run("purge removes only expired entries", func(t *testing.T) {
		now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
		store := NewStore(time.Minute)
		store.now = func() time.Time { return now }

		_ = store.Save(ctx, "old", ports.StoredResponse{StatusCode: 200})
		now = now.Add(30 * time.Second)
		_ = store.Save(ctx, "fresh", ports.StoredResponse{StatusCode: 200})
		now = now.Add(45 * time.Second)

		removed, err := store.Purge(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 purged entry, got %d", removed)
		}
		if got, _ := store.Get(ctx, "fresh"); got == nil {
			t.Error("expected fresh entry to survive purge")
		}
	})
}
