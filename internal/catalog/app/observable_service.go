package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/metrics"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableService struct {
	next    Catalog
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableService(next Catalog, logger *slog.Logger, metrics *metrics.Metrics) *ObservableService {
	return &ObservableService{
		next:    next,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableService) AddToWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error) {
	return o.changeWishlist(ctx, "add", userID, productID, o.next.AddToWishlist)
}

func (o *ObservableService) RemoveFromWishlist(ctx context.Context, userID, productID string) (*WishlistResult, error) {
	return o.changeWishlist(ctx, "remove", userID, productID, o.next.RemoveFromWishlist)
}

func (o *ObservableService) changeWishlist(
	ctx context.Context,
	action, userID, productID string,
	change func(ctx context.Context, userID, productID string) (*WishlistResult, error),
) (*WishlistResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.Wishlist."+action)
	defer span.End()

	start := time.Now()
	var (
		success bool
		outcome string
	)
	defer func() {
		o.metrics.RecordDuration(ctx, "wishlist_"+action, time.Since(start).Seconds())
		o.metrics.RecordWishlistChange(ctx, action, outcome, success)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.String("wishlist.action", action),
		attribute.String("product.id", productID),
	)

	result, err := change(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			telemetry.AddSpanEvent(span, "product.not_found")
			o.logger.InfoContext(ctx, "wishlist product not found", "action", action, "product_id", productID)
			return nil, err
		}
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to change wishlist",
			"error", err,
			"action", action,
			"product_id", productID,
		)
		return nil, err
	}

	success = true
	outcome = string(result.Status)
	telemetry.AddSpanAttributes(span,
		attribute.String("wishlist.status", outcome),
		attribute.Bool("wishlist.created", result.Created),
	)
	telemetry.SetSpanSuccess(span)

	o.logger.InfoContext(ctx, "wishlist changed",
		"action", action,
		"status", outcome,
		"product_id", productID,
	)
	return result, nil
}

func (o *ObservableService) ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.ListWishlist")
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.RecordDuration(ctx, "list_wishlist", time.Since(start).Seconds())
	}()

	items, err := o.next.ListWishlist(ctx, userID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to list wishlist", "error", err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("wishlist.items", len(items)))
	telemetry.SetSpanSuccess(span)
	return items, nil
}

func (o *ObservableService) RenderRecentlyViewed(ctx context.Context, ids []string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.RenderRecentlyViewed")
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.RecordDuration(ctx, "render_recently_viewed", time.Since(start).Seconds())
	}()

	telemetry.AddSpanAttributes(span, attribute.StringSlice("recently_viewed.ids", ids))

	html, err := o.next.RenderRecentlyViewed(ctx, ids)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to render recently viewed", "error", err, "ids", ids)
		return "", err
	}

	o.metrics.RecordPanelRender(ctx, min(len(ids), domain.DisplayCap))
	telemetry.SetSpanSuccess(span)
	return html, nil
}

func (o *ObservableService) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	resp, err := o.next.GetIdempotentResponse(ctx, key)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to read idempotency key", "error", err)
		return nil, err
	}
	if resp != nil {
		o.logger.InfoContext(ctx, "replaying stored response", "status_code", resp.StatusCode, "resource_id", resp.ResourceID)
	}
	return resp, nil
}

func (o *ObservableService) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	if err := o.next.SaveIdempotentResponse(ctx, key, response); err != nil {
		o.logger.ErrorContext(ctx, "failed to save idempotency key", "error", err)
		return err
	}
	return nil
}
