//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dejobratic/storefront/internal/catalog/adapters/postgres"
	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/database/dbtest"
	"github.com/google/go-cmp/cmp"
)

var seed = []domain.Product{
	{ID: "1", Name: "Brake pads", Slug: "brake-pads", PriceCents: 4999, Currency: "USD"},
	{ID: "2", Name: "Oil filter", Slug: "oil-filter", PriceCents: 1250, Currency: "USD"},
	{ID: "3", Name: "Spark plug", Slug: "spark-plug", PriceCents: 399, Currency: "USD", ImageURL: "/media/spark.png"},
}

func seedProducts(t *testing.T, repo *postgres.ProductRepository) {
	t.Helper()
	for _, p := range seed {
		if err := repo.Upsert(context.Background(), p); err != nil {
			t.Fatalf("failed to seed product %s: %v", p.ID, err)
		}
	}
}

func TestProductRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := postgres.NewProductRepository(pool)
	seedProducts(t, repo)
	ctx := context.Background()

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "3")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if diff := cmp.Diff(seed[2], *got); diff != "" {
			t.Errorf("product mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "404"); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("get by ids keeps request order and skips unknown", func(t *testing.T) {
		got, err := repo.GetByIDs(ctx, []string{"3", "404", "1", "3"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		ids := make([]string, 0, len(got))
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		if diff := cmp.Diff([]string{"3", "1"}, ids); diff != "" {
			t.Errorf("ids mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestWishlistRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	seedProducts(t, postgres.NewProductRepository(pool))
	repo := postgres.NewWishlistRepository(pool)
	ctx := context.Background()

	created, err := repo.Add(ctx, "u1", "1")
	if err != nil || !created {
		t.Fatalf("expected first add to create, got created=%v err=%v", created, err)
	}

	created, err = repo.Add(ctx, "u1", "1")
	if err != nil || created {
		t.Errorf("expected second add to be a no-op, got created=%v err=%v", created, err)
	}

	if _, err := repo.Add(ctx, "u1", "404"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown product, got: %v", err)
	}

	if _, err := repo.Add(ctx, "u1", "2"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	items, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if ok, _ := repo.Contains(ctx, "u2", "1"); ok {
		t.Error("wishlists must be per user")
	}

	removed, err := repo.Remove(ctx, "u1", "1")
	if err != nil || !removed {
		t.Errorf("expected remove to report presence, got removed=%v err=%v", removed, err)
	}
	if removed, _ := repo.Remove(ctx, "u1", "1"); removed {
		t.Error("expected second remove to report absence")
	}
	if ok, _ := repo.Contains(ctx, "u1", "1"); ok {
		t.Error("expected product to be gone")
	}
}
