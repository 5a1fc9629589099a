package seed_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dejobratic/storefront/internal/catalog/adapters/seed"
	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	t.Run("reads products with defaults", func(t *testing.T) {
		doc := `
products:
  - id: "1"
    name: Brake pads
    slug: brake-pads
    price_cents: 4999
  - id: spark-7
    name: Spark plug
    slug: spark-plug
    price_cents: 399
    currency: EUR
    image_url: /media/spark.png
`
		got, err := seed.Decode(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []domain.Product{
			{ID: "1", Name: "Brake pads", Slug: "brake-pads", PriceCents: 4999, Currency: "USD"},
			{ID: "spark-7", Name: "Spark plug", Slug: "spark-plug", PriceCents: 399, Currency: "EUR", ImageURL: "/media/spark.png"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("products mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		got, err := seed.Decode(strings.NewReader(""))
		if err != nil || len(got) != 0 {
			t.Errorf("expected no products, got %v (err=%v)", got, err)
		}
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"invalid id", "products:\n  - {id: \"a b\", name: x, slug: x}\n"},
		{"missing slug", "products:\n  - {id: \"1\", name: x}\n"},
		{"negative price", "products:\n  - {id: \"1\", name: x, slug: x, price_cents: -1}\n"},
		{"duplicate id", "products:\n  - {id: \"1\", name: x, slug: x}\n  - {id: \"1\", name: y, slug: y}\n"},
		{"unknown field", "products:\n  - {id: \"1\", name: x, slug: x, price: 5}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := seed.Decode(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("invalid id wraps domain error", func(t *testing.T) {
		_, err := seed.Decode(strings.NewReader("products:\n  - {id: \"\", name: x, slug: x}\n"))
		if !errors.Is(err, domain.ErrInvalidProductID) {
			t.Errorf("expected ErrInvalidProductID, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.yaml")
	if err := os.WriteFile(path, []byte("products:\n  - {id: \"1\", name: x, slug: x}\n"), 0o600); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}

	got, err := seed.Load(path)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one product, got %v (err=%v)", got, err)
	}

	if _, err := seed.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
