package ports

import "context"

// EventBus defines the contract for publishing storefront activity events.
type EventBus interface {
	PublishWishlistAdded(ctx context.Context, userID, productID string) error
	PublishWishlistRemoved(ctx context.Context, userID, productID string) error
	PublishProductsViewed(ctx context.Context, productIDs []string) error
}
