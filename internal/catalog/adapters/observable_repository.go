package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/database"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableProductRepository struct {
	repo    ports.ProductRepository
	metrics *database.Metrics
}

func NewObservableProductRepository(repo ports.ProductRepository, metrics *database.Metrics) *ObservableProductRepository {
	return &ObservableProductRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableProductRepository) GetByID(ctx context.Context, id string) (product *domain.Product, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.GetByID",
		attribute.String("product.id", id),
		attribute.String("operation", "get_by_id"),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	product, err = r.repo.GetByID(ctx, id)
	r.metrics.RecordQuery(ctx, "get_product_by_id", time.Since(start).Seconds(), err, ports.ErrNotFound)

	return product, err
}

func (r *ObservableProductRepository) GetByIDs(ctx context.Context, ids []string) (products []domain.Product, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductRepository.GetByIDs",
		attribute.StringSlice("product.ids", ids),
		attribute.String("operation", "get_by_ids"),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	products, err = r.repo.GetByIDs(ctx, ids)
	r.metrics.RecordQuery(ctx, "get_products_by_ids", time.Since(start).Seconds(), err)

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(products)))
	return products, err
}

type ObservableWishlistRepository struct {
	repo    ports.WishlistRepository
	metrics *database.Metrics
}

func NewObservableWishlistRepository(repo ports.WishlistRepository, metrics *database.Metrics) *ObservableWishlistRepository {
	return &ObservableWishlistRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableWishlistRepository) change(ctx context.Context, name, operation, userID, productID string, fn func(context.Context) (bool, error)) (changed bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "WishlistRepository."+name,
		attribute.String("user.id", userID),
		attribute.String("product.id", productID),
		attribute.String("operation", operation),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	changed, err = fn(ctx)
	r.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds(), err, ports.ErrNotFound)

	telemetry.AddSpanAttributes(span, attribute.Bool("result.changed", changed))
	return changed, err
}

func (r *ObservableWishlistRepository) Add(ctx context.Context, userID, productID string) (bool, error) {
	return r.change(ctx, "Add", "add_wishlist_item", userID, productID, func(ctx context.Context) (bool, error) {
		return r.repo.Add(ctx, userID, productID)
	})
}

func (r *ObservableWishlistRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	return r.change(ctx, "Remove", "remove_wishlist_item", userID, productID, func(ctx context.Context) (bool, error) {
		return r.repo.Remove(ctx, userID, productID)
	})
}

func (r *ObservableWishlistRepository) Contains(ctx context.Context, userID, productID string) (bool, error) {
	return r.change(ctx, "Contains", "contains_wishlist_item", userID, productID, func(ctx context.Context) (bool, error) {
		return r.repo.Contains(ctx, userID, productID)
	})
}

func (r *ObservableWishlistRepository) List(ctx context.Context, userID string) (items []domain.WishlistItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "WishlistRepository.List",
		attribute.String("user.id", userID),
		attribute.String("operation", "list"),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	items, err = r.repo.List(ctx, userID)
	r.metrics.RecordQuery(ctx, "list_wishlist_items", time.Since(start).Seconds(), err)

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(items)))
	return items, err
}
