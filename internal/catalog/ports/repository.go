package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

// ProductRepository reads catalog products.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs returns the products that exist, in the order of ids.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// WishlistRepository stores the products each user has saved.
type WishlistRepository interface {
	// Add reports whether the product was newly added.
	Add(ctx context.Context, userID, productID string) (bool, error)
	// Remove reports whether the product was present.
	Remove(ctx context.Context, userID, productID string) (bool, error)
	Contains(ctx context.Context, userID, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}

// KeyValueStore is the visitor-local storage the recently viewed list lives in.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

var (
	// ErrNotFound is returned when the requested product does not exist.
	ErrNotFound = errors.New("product not found")
)
