// Package events publishes storefront activity. There is no broker yet, so
// events are written to the structured log.
package events

import (
	"context"
	"log/slog"
	"time"
)

const (
	TopicWishlistAdded   = "wishlist.added"
	TopicWishlistRemoved = "wishlist.removed"
	TopicProductsViewed  = "products.viewed"
)

// LogBus writes each event to logger at level.
type LogBus struct {
	logger  *slog.Logger
	level   slog.Level
	metrics *Metrics
}

// NewLogBus returns a publisher that logs events. metrics may be nil.
func NewLogBus(logger *slog.Logger, level slog.Level, metrics *Metrics) *LogBus {
	return &LogBus{logger: logger, level: level, metrics: metrics}
}

func (b *LogBus) publish(ctx context.Context, topic string, attrs ...any) error {
	start := time.Now()
	b.logger.Log(ctx, b.level, "event::"+topic, attrs...)
	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), nil)
	}
	return nil
}

func (b *LogBus) PublishWishlistAdded(ctx context.Context, userID, productID string) error {
	return b.publish(ctx, TopicWishlistAdded, "user_id", userID, "product_id", productID)
}

func (b *LogBus) PublishWishlistRemoved(ctx context.Context, userID, productID string) error {
	return b.publish(ctx, TopicWishlistRemoved, "user_id", userID, "product_id", productID)
}

func (b *LogBus) PublishProductsViewed(ctx context.Context, productIDs []string) error {
	return b.publish(ctx, TopicProductsViewed, "product_ids", productIDs)
}

// NoopBus drops every event.
type NoopBus struct{}

func NewNoopBus() *NoopBus {
	return &NoopBus{}
}

func (NoopBus) PublishWishlistAdded(context.Context, string, string) error   { return nil }
func (NoopBus) PublishWishlistRemoved(context.Context, string, string) error { return nil }
func (NoopBus) PublishProductsViewed(context.Context, []string) error        { return nil }
