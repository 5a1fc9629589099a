package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dejobratic/storefront/internal/checkout/domain"
)

// Catalog serves a fixed set of shipping and payment methods, for local development and tests.
type Catalog struct {
	mu       sync.RWMutex
	shipping []domain.ShippingMethod
	payment  []domain.PaymentMethod
}

// NewCatalog constructs a catalog from explicit method lists.
func NewCatalog(shipping []domain.ShippingMethod, payment []domain.PaymentMethod) *Catalog {
	return &Catalog{
		shipping: append([]domain.ShippingMethod(nil), shipping...),
		payment:  append([]domain.PaymentMethod(nil), payment...),
	}
}

// NewCatalogFromFees builds shipping methods named after their ids and the default payment methods.
func NewCatalogFromFees(fees domain.ShippingFees) *Catalog {
	ids := make([]string, 0, len(fees))
	for id := range fees {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	shipping := make([]domain.ShippingMethod, 0, len(ids))
	for _, id := range ids {
		shipping = append(shipping, domain.ShippingMethod{ID: id, Name: id, Fee: fees[id]})
	}
	return NewCatalog(shipping, DefaultPaymentMethods())
}

// DefaultPaymentMethods are the payment options offered when none are configured.
func DefaultPaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "card", Name: "Credit / debit card", RequiresCard: true},
		{ID: "paypal", Name: "PayPal"},
		{ID: "cod", Name: "Cash on delivery"},
	}
}

func (c *Catalog) ShippingMethods(_ context.Context) ([]domain.ShippingMethod, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ShippingMethod(nil), c.shipping...), nil
}

func (c *Catalog) PaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.PaymentMethod(nil), c.payment...), nil
}

// SetShippingMethods replaces the shipping methods.
func (c *Catalog) SetShippingMethods(methods []domain.ShippingMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shipping = append([]domain.ShippingMethod(nil), methods...)
}
