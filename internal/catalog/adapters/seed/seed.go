// Package seed reads catalog fixtures from YAML.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"gopkg.in/yaml.v3"
)

type file struct {
	Products []product `yaml:"products"`
}

type product struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Slug       string `yaml:"slug"`
	PriceCents int64  `yaml:"price_cents"`
	Currency   string `yaml:"currency"`
	ImageURL   string `yaml:"image_url"`
}

// Decode parses a products document. Every product must carry a valid id,
// a name and a slug; currency defaults to USD.
func Decode(r io.Reader) ([]domain.Product, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	seen := make(map[string]bool, len(f.Products))
	products := make([]domain.Product, 0, len(f.Products))
	for i, p := range f.Products {
		if err := domain.ValidateProductID(p.ID); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if p.Name == "" || p.Slug == "" {
			return nil, fmt.Errorf("product %s: name and slug are required", p.ID)
		}
		if p.PriceCents < 0 {
			return nil, fmt.Errorf("product %s: price must not be negative", p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		seen[p.ID] = true

		currency := p.Currency
		if currency == "" {
			currency = "USD"
		}
		products = append(products, domain.Product{
			ID:         p.ID,
			Name:       p.Name,
			Slug:       p.Slug,
			PriceCents: p.PriceCents,
			Currency:   currency,
			ImageURL:   p.ImageURL,
		})
	}

	return products, nil
}

// Load reads the products document at path.
func Load(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}
