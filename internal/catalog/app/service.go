package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
)

// Catalog is the storefront API used by the HTTP adapter.
type Catalog interface {
	AddToWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error)
	RemoveFromWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error)
	ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	RenderRecentlyViewed(ctx context.Context, ids []string) (string, error)
	GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error)
	SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error
}

// Service bundles the wishlist and recently viewed use cases.
type Service struct {
	products  ports.ProductRepository
	wishlist  ports.WishlistRepository
	events    ports.EventBus
	idemStore ports.IdempotencyStore
	logger    *slog.Logger
}

// NewService wires required dependencies.
func NewService(
	products ports.ProductRepository,
	wishlist ports.WishlistRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		products:  products,
		wishlist:  wishlist,
		events:    events,
		idemStore: idem,
		logger:    logger,
	}
}

// WishlistResult is reported back to the page after a wishlist change.
type WishlistResult struct {
	Status  domain.WishlistStatus `json:"status"`
	Created bool                  `json:"created"`
	Message string                `json:"message"`
	Product domain.Product        `json:"product"`
}

func (s *Service) lookupProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if err := domain.ValidateProductID(productID); err != nil {
		return nil, ports.ErrNotFound
	}
	return s.products.GetByID(ctx, productID)
}

// AddToWishlist saves the product for userID. Adding a saved product again is not an error.
func (s *Service) AddToWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error) {
	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	created, err := s.wishlist.Add(ctx, userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}

	message := product.Name + " is already in your wishlist!"
	if created {
		message = product.Name + " added to wishlist!"
		if err := s.events.PublishWishlistAdded(ctx, userID, product.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish wishlist event", "error", err, "product_id", product.ID)
		}
	}

	return &WishlistResult{
		Status:  domain.WishlistAdded,
		Created: created,
		Message: message,
		Product: *product,
	}, nil
}

// RemoveFromWishlist deletes the product from userID's wishlist. Removing an absent product is not an error.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error) {
	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	removed, err := s.wishlist.Remove(ctx, userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("remove wishlist item: %w", err)
	}

	if removed {
		if err := s.events.PublishWishlistRemoved(ctx, userID, product.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish wishlist event", "error", err, "product_id", product.ID)
		}
	}

	return &WishlistResult{
		Status:  domain.WishlistRemoved,
		Message: product.Name + " removed from wishlist!",
		Product: *product,
	}, nil
}

// ListWishlist returns the user's saved products, newest first.
func (s *Service) ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.wishlist.List(ctx, userID)
}

// RenderRecentlyViewed renders the panel for up to DisplayCap of ids. Unknown
// ids are skipped and no ids renders an empty panel.
func (s *Service) RenderRecentlyViewed(ctx context.Context, ids []string) (string, error) {
	ids = normalizeViewed(ids)
	if len(ids) == 0 {
		return "", nil
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("load recently viewed products: %w", err)
	}

	if err := s.events.PublishProductsViewed(ctx, ids); err != nil {
		s.logger.WarnContext(ctx, "failed to publish products viewed event", "error", err)
	}

	return renderPanel(products)
}

func normalizeViewed(ids []string) []string {
	out := make([]string, 0, domain.DisplayCap)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || domain.ValidateProductID(id) != nil {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) == domain.DisplayCap {
			break
		}
	}
	return out
}

// GetIdempotentResponse retrieves a stored response for a key.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	if key == "" {
		return nil, errors.New("idempotency key is empty")
	}
	return s.idemStore.Get(ctx, key)
}

// SaveIdempotentResponse stores a response for future replays.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	if key == "" {
		return errors.New("idempotency key is empty")
	}
	return s.idemStore.Save(ctx, key, response)
}
