package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

type wishlistKey struct {
	userID    string
	productID string
}

// WishlistRepository keeps wishlists in memory. Listing resolves products through products.
type WishlistRepository struct {
	mu       sync.RWMutex
	items    map[wishlistKey]time.Time
	products *ProductRepository
	now      func() time.Time
}

// NewWishlistRepository constructs a new in-memory wishlist store.
func NewWishlistRepository(products *ProductRepository) *WishlistRepository {
	return &WishlistRepository{
		items:    make(map[wishlistKey]time.Time),
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *WishlistRepository) Add(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey{userID: userID, productID: productID}
	if _, exists := r.items[key]; exists {
		return false, nil
	}
	r.items[key] = r.now()
	return true, nil
}

func (r *WishlistRepository) Remove(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey{userID: userID, productID: productID}
	if _, exists := r.items[key]; !exists {
		return false, nil
	}
	delete(r.items, key)
	return true, nil
}

func (r *WishlistRepository) Contains(_ context.Context, userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.items[wishlistKey{userID: userID, productID: productID}]
	return exists, nil
}

// List returns the user's items newest first, skipping products no longer in the catalog.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	r.mu.RLock()
	var items []domain.WishlistItem
	for key, addedAt := range r.items {
		if key.userID != userID {
			continue
		}
		items = append(items, domain.WishlistItem{Product: domain.Product{ID: key.productID}, AddedAt: addedAt})
	}
	r.mu.RUnlock()

	result := make([]domain.WishlistItem, 0, len(items))
	for _, item := range items {
		product, err := r.products.GetByID(ctx, item.Product.ID)
		if err != nil {
			continue
		}
		item.Product = *product
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].Product.ID < result[j].Product.ID
		}
		return result[i].AddedAt.After(result[j].AddedAt)
	})

	return result, nil
}
