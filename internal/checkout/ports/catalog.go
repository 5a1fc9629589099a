package ports

import (
	"context"

	"github.com/dejobratic/storefront/internal/checkout/domain"
)

// Catalog exposes the active shipping and payment options.
type Catalog interface {
	ShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error)
	PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}
