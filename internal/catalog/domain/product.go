package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidProductID = errors.New("invalid product id")

// Product is the subset of catalog data rendered in listings and panels.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Price renders the product price with two decimals.
func (p Product) Price() string {
	return fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100)
}

// URL is the product detail page path.
func (p Product) URL() string {
	return "/products/" + p.Slug + "/"
}

// WishlistStatus is the outcome reported to the page after a wishlist toggle.
type WishlistStatus string

const (
	WishlistAdded   WishlistStatus = "added"
	WishlistRemoved WishlistStatus = "removed"
)

// WishlistItem is a product saved by a user.
type WishlistItem struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}

// ValidateProductID rejects ids that cannot appear in a wishlist path segment.
func ValidateProductID(id string) error {
	if id == "" || len(id) > 64 {
		return ErrInvalidProductID
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return ErrInvalidProductID
		}
	}
	return nil
}
