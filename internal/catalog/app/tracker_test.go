package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dejobratic/storefront/internal/catalog/adapters/memory"
	"github.com/dejobratic/storefront/internal/catalog/app"
	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

type mockFetcher struct {
	mu      sync.Mutex
	calls   [][]string
	fetchFn func(ctx context.Context, ids []string) (string, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, ids []string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ids)
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ids)
	}
	return "<div>panel</div>", nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("storage disabled")
}

func newTracker(t *testing.T, store *memory.KeyValueStore, fetcher *mockFetcher) (*app.Tracker, *memory.Panel) {
	t.Helper()
	m, _ := newTestMetrics(t)
	panel := &memory.Panel{}
	return app.NewTracker(store, fetcher, panel, discardLogger(), m), panel
}

func TestTrackerOnProductView(t *testing.T) {
	t.Run("moves revisited product to the front and fetches the others", func(t *testing.T) {
		ctx := context.Background()
		store := memory.NewKeyValueStore()
		_ = store.Set(ctx, domain.RecentlyViewedKey, `["5","3","1"]`)
		fetcher := &mockFetcher{}
		tracker, panel := newTracker(t, store, fetcher)

		display := tracker.OnProductView(ctx, "3")
		tracker.Wait()

		stored, _, _ := store.Get(ctx, domain.RecentlyViewedKey)
		if stored != `["3","5","1"]` {
			t.Errorf("expected stored list [3,5,1], got %s", stored)
		}
		if diff := cmp.Diff([]string{"5", "1"}, display); diff != "" {
			t.Errorf("display mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([][]string{{"5", "1"}}, fetcher.calls); diff != "" {
			t.Errorf("fetch calls mismatch (-want +got):\n%s", diff)
		}
		if panel.HTML() != "<div>panel</div>" {
			t.Errorf("expected panel markup, got %q", panel.HTML())
		}
	})

	t.Run("never lists the viewed product when its id is padded", func(t *testing.T) {
		ctx := context.Background()
		store := memory.NewKeyValueStore()
		_ = store.Set(ctx, domain.RecentlyViewedKey, `["5","3"]`)
		fetcher := &mockFetcher{}
		tracker, _ := newTracker(t, store, fetcher)

		display := tracker.OnProductView(ctx, " 3 ")
		tracker.Wait()

		if diff := cmp.Diff([]string{"5"}, display); diff != "" {
			t.Errorf("display mismatch (-want +got):\n%s", diff)
		}
		if stored, _, _ := store.Get(ctx, domain.RecentlyViewedKey); stored != `["3","5"]` {
			t.Errorf("expected stored list [3,5], got %s", stored)
		}
	})

	t.Run("clears the panel without fetching on first visit", func(t *testing.T) {
		fetcher := &mockFetcher{}
		tracker, panel := newTracker(t, memory.NewKeyValueStore(), fetcher)

		display := tracker.OnProductView(context.Background(), "7")
		tracker.Wait()

		if len(display) != 0 {
			t.Errorf("expected empty display, got %v", display)
		}
		if len(fetcher.calls) != 0 {
			t.Errorf("expected no fetch, got %v", fetcher.calls)
		}
		if panel.Writes() != 1 || panel.HTML() != "" {
			t.Errorf("expected panel to be cleared once, got %d writes with %q", panel.Writes(), panel.HTML())
		}
	})

	t.Run("recovers from a malformed stored list", func(t *testing.T) {
		ctx := context.Background()
		store := memory.NewKeyValueStore()
		_ = store.Set(ctx, domain.RecentlyViewedKey, `not json`)
		tracker, _ := newTracker(t, store, &mockFetcher{})

		tracker.OnProductView(ctx, "2")
		tracker.Wait()

		stored, _, _ := store.Get(ctx, domain.RecentlyViewedKey)
		if stored != `["2"]` {
			t.Errorf("expected list to restart, got %s", stored)
		}
	})

	t.Run("leaves the panel untouched when the fetch fails", func(t *testing.T) {
		ctx := context.Background()
		store := memory.NewKeyValueStore()
		_ = store.Set(ctx, domain.RecentlyViewedKey, `["1"]`)
		fetcher := &mockFetcher{
			fetchFn: func(context.Context, []string) (string, error) { return "", errors.New("network down") },
		}
		tracker, panel := newTracker(t, store, fetcher)

		display := tracker.OnProductView(ctx, "2")
		tracker.Wait()

		if diff := cmp.Diff([]string{"1"}, display); diff != "" {
			t.Errorf("display mismatch (-want +got):\n%s", diff)
		}
		if panel.Writes() != 0 {
			t.Errorf("expected panel not to be written, got %d writes", panel.Writes())
		}
	})

	t.Run("fetch outlives the caller's context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		store := memory.NewKeyValueStore()
		_ = store.Set(ctx, domain.RecentlyViewedKey, `["1"]`)

		release := make(chan struct{})
		var fetchErr error
		fetcher := &mockFetcher{
			fetchFn: func(ctx context.Context, _ []string) (string, error) {
				<-release
				fetchErr = ctx.Err()
				return "<p>ok</p>", nil
			},
		}
		tracker, panel := newTracker(t, store, fetcher)

		tracker.OnProductView(ctx, "2")
		cancel()
		close(release)
		tracker.Wait()

		if fetchErr != nil {
			t.Errorf("expected fetch context to stay live, got %v", fetchErr)
		}
		if panel.HTML() != "<p>ok</p>" {
			t.Errorf("expected panel markup, got %q", panel.HTML())
		}
	})

	t.Run("works without usable storage", func(t *testing.T) {
		m, _ := newTestMetrics(t)
		panel := &memory.Panel{}
		tracker := app.NewTracker(failingStore{}, &mockFetcher{}, panel, discardLogger(), m)

		display := tracker.OnProductView(context.Background(), "2")
		tracker.Wait()

		if len(display) != 0 {
			t.Errorf("expected empty display, got %v", display)
		}
	})
}

func TestTrackerWaitJoinsBackgroundFetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := memory.NewKeyValueStore()
	_ = store.Set(ctx, domain.RecentlyViewedKey, `["4","3","2","1"]`)
	tracker, _ := newTracker(t, store, &mockFetcher{
		fetchFn: func(context.Context, []string) (string, error) {
			return "", errors.New("upstream down")
		},
	})

	for _, id := range []string{"9", "8", "7"} {
		tracker.OnProductView(ctx, id)
	}
	tracker.Wait()
}
