package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dejobratic/storefront/internal/catalog/adapters/memory"
	"github.com/dejobratic/storefront/internal/catalog/app"
	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	idemmemory "github.com/dejobratic/storefront/internal/idempotency/memory"
)

type recordingBus struct {
	added   []string
	removed []string
	viewed  [][]string
	err     error
}

func (b *recordingBus) PublishWishlistAdded(_ context.Context, _, productID string) error {
	b.added = append(b.added, productID)
	return b.err
}

func (b *recordingBus) PublishWishlistRemoved(_ context.Context, _, productID string) error {
	b.removed = append(b.removed, productID)
	return b.err
}

func (b *recordingBus) PublishProductsViewed(_ context.Context, ids []string) error {
	b.viewed = append(b.viewed, ids)
	return b.err
}

type failingWishlist struct {
	ports.WishlistRepository
}

func (failingWishlist) Add(context.Context, string, string) (bool, error) {
	return false, errors.New("database unavailable")
}

func testProducts() *memory.ProductRepository {
	return memory.NewProductRepository(
		domain.Product{ID: "1", Name: "Brake pads", Slug: "brake-pads", PriceCents: 4999, Currency: "USD"},
		domain.Product{ID: "2", Name: "Oil filter", Slug: "oil-filter", PriceCents: 1250, Currency: "USD"},
		domain.Product{ID: "3", Name: "Spark <plug>", Slug: "spark-plug", PriceCents: 899, Currency: "USD"},
		domain.Product{ID: "4", Name: "Wiper blade", Slug: "wiper-blade", PriceCents: 1599, Currency: "USD"},
	)
}

func newTestService(bus *recordingBus) *app.Service {
	products := testProducts()
	return app.NewService(products, memory.NewWishlistRepository(products), bus, idemmemory.NewStore(0), discardLogger())
}

func TestAddToWishlist(t *testing.T) {
	t.Run("adds a product and publishes an event", func(t *testing.T) {
		bus := &recordingBus{}
		service := newTestService(bus)

		result, err := service.AddToWishlist(context.Background(), "u1", "2")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if result.Status != domain.WishlistAdded || !result.Created {
			t.Errorf("expected created added result, got %+v", result)
		}
		if result.Message != "Oil filter added to wishlist!" {
			t.Errorf("unexpected message %q", result.Message)
		}
		if len(bus.added) != 1 {
			t.Errorf("expected one event, got %v", bus.added)
		}
	})

	t.Run("reports added again without a second event", func(t *testing.T) {
		bus := &recordingBus{}
		service := newTestService(bus)
		ctx := context.Background()

		_, _ = service.AddToWishlist(ctx, "u1", "2")
		result, err := service.AddToWishlist(ctx, "u1", "2")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if result.Status != domain.WishlistAdded || result.Created {
			t.Errorf("expected existing added result, got %+v", result)
		}
		if result.Message != "Oil filter is already in your wishlist!" {
			t.Errorf("unexpected message %q", result.Message)
		}
		if len(bus.added) != 1 {
			t.Errorf("expected one event, got %v", bus.added)
		}
	})

	t.Run("returns not found for unknown or malformed ids", func(t *testing.T) {
		service := newTestService(&recordingBus{})

		for _, id := range []string{"99", "../1"} {
			if _, err := service.AddToWishlist(context.Background(), "u1", id); !errors.Is(err, ports.ErrNotFound) {
				t.Errorf("id %q: expected ErrNotFound, got %v", id, err)
			}
		}
	})

	t.Run("ignores event publish failures", func(t *testing.T) {
		service := newTestService(&recordingBus{err: errors.New("bus down")})

		if _, err := service.AddToWishlist(context.Background(), "u1", "1"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("wraps repository failures", func(t *testing.T) {
		products := testProducts()
		service := app.NewService(products, failingWishlist{}, &recordingBus{}, idemmemory.NewStore(0), discardLogger())

		_, err := service.AddToWishlist(context.Background(), "u1", "1")
		if err == nil || !strings.Contains(err.Error(), "add wishlist item") {
			t.Errorf("expected wrapped error, got %v", err)
		}
	})
}

func TestRemoveFromWishlist(t *testing.T) {
	bus := &recordingBus{}
	service := newTestService(bus)
	ctx := context.Background()

	_, _ = service.AddToWishlist(ctx, "u1", "1")

	result, err := service.RemoveFromWishlist(ctx, "u1", "1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Status != domain.WishlistRemoved {
		t.Errorf("expected removed, got %s", result.Status)
	}

	result, err = service.RemoveFromWishlist(ctx, "u1", "1")
	if err != nil {
		t.Fatalf("expected removing an absent item to succeed, got: %v", err)
	}
	if result.Status != domain.WishlistRemoved {
		t.Errorf("expected removed, got %s", result.Status)
	}
	if len(bus.removed) != 1 {
		t.Errorf("expected one removal event, got %v", bus.removed)
	}

	items, _ := service.ListWishlist(ctx, "u1")
	if len(items) != 0 {
		t.Errorf("expected empty wishlist, got %v", items)
	}
}

func TestRenderRecentlyViewed(t *testing.T) {
	t.Run("renders known products in order and escapes names", func(t *testing.T) {
		bus := &recordingBus{}
		service := newTestService(bus)

		html, err := service.RenderRecentlyViewed(context.Background(), []string{"3", "99", "1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		first := strings.Index(html, `data-product-id="3"`)
		second := strings.Index(html, `data-product-id="1"`)
		if first < 0 || second < 0 || first > second {
			t.Errorf("expected products 3 then 1 in markup, got %s", html)
		}
		if !strings.Contains(html, "Spark &lt;plug&gt;") {
			t.Errorf("expected escaped product name, got %s", html)
		}
		if !strings.Contains(html, `href="/products/brake-pads/"`) || !strings.Contains(html, "49.99 USD") {
			t.Errorf("expected product link and price, got %s", html)
		}
		if strings.Contains(html, `data-product-id="99"`) {
			t.Error("unknown product must be skipped")
		}
		if len(bus.viewed) != 1 {
			t.Errorf("expected one viewed event, got %v", bus.viewed)
		}
	})

	t.Run("renders at most three distinct products", func(t *testing.T) {
		service := newTestService(&recordingBus{})

		html, err := service.RenderRecentlyViewed(context.Background(), []string{"1", "1", "2", "3", "4"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if got := strings.Count(html, "data-product-id="); got != 3 {
			t.Errorf("expected 3 products, got %d", got)
		}
		if strings.Contains(html, `data-product-id="4"`) {
			t.Error("expected fourth product to be cut")
		}
	})

	t.Run("renders nothing for no ids", func(t *testing.T) {
		bus := &recordingBus{}
		service := newTestService(bus)

		html, err := service.RenderRecentlyViewed(context.Background(), nil)
		if err != nil || html != "" {
			t.Errorf("expected empty markup, got %q err=%v", html, err)
		}
		if len(bus.viewed) != 0 {
			t.Errorf("expected no event, got %v", bus.viewed)
		}
	})
}

func TestIdempotentResponses(t *testing.T) {
	service := newTestService(&recordingBus{})
	ctx := context.Background()

	if _, err := service.GetIdempotentResponse(ctx, ""); err == nil {
		t.Error("expected error for empty key")
	}

	stored := ports.StoredResponse{StatusCode: 200, Body: []byte(`{"status":"added"}`), ResourceID: "1"}
	if err := service.SaveIdempotentResponse(ctx, "k1", stored); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := service.GetIdempotentResponse(ctx, "k1")
	if err != nil || got == nil || got.ResourceID != "1" {
		t.Errorf("expected stored response, got %+v err=%v", got, err)
	}
}
