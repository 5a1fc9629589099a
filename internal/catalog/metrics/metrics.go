package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	wishlistChangesTotal metric.Int64Counter
	panelRendersTotal    metric.Int64Counter
	panelFetchesTotal    metric.Int64Counter
	operationDuration    metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.wishlistChangesTotal, err = meter.Int64Counter(
		"wishlist_changes_total",
		metric.WithDescription("Total number of wishlist add and remove requests"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create wishlist_changes_total counter: %w", err)
	}

	m.panelRendersTotal, err = meter.Int64Counter(
		"recently_viewed_renders_total",
		metric.WithDescription("Total number of recently viewed panels rendered"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create recently_viewed_renders_total counter: %w", err)
	}

	m.panelFetchesTotal, err = meter.Int64Counter(
		"recently_viewed_fetches_total",
		metric.WithDescription("Total number of recently viewed panel fetches issued by the tracker"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create recently_viewed_fetches_total counter: %w", err)
	}

	m.operationDuration, err = meter.Float64Histogram(
		"catalog_operation_duration_seconds",
		metric.WithDescription("Duration of catalog operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create catalog_operation_duration histogram: %w", err)
	}

	return m, nil
}

func statusOf(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordWishlistChange counts one add or remove; outcome is the reported status
// ("added", "removed") or empty when the request failed.
func (m *Metrics) RecordWishlistChange(ctx context.Context, action, outcome string, success bool) {
	m.wishlistChangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
		attribute.String("status", statusOf(success)),
	))
}

func (m *Metrics) RecordPanelRender(ctx context.Context, products int) {
	m.panelRendersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("products", products),
	))
}

func (m *Metrics) RecordPanelFetch(ctx context.Context, success bool) {
	m.panelFetchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", statusOf(success)),
	))
}

func (m *Metrics) RecordDuration(ctx context.Context, operation string, durationSeconds float64) {
	m.operationDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
