package events

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts published events per topic and times each publish.
type Metrics struct {
	published      metric.Int64Counter
	publishLatency metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	published, err := meter.Int64Counter("events_published_total",
		metric.WithDescription("Storefront events published by topic"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create events_published_total: %w", err)
	}

	latency, err := meter.Float64Histogram("events_publish_latency_seconds",
		metric.WithDescription("Time spent handing an event to the bus"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create events_publish_latency_seconds: %w", err)
	}

	return &Metrics{published: published, publishLatency: latency}, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, topic string, durationSeconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	)
	m.published.Add(ctx, 1, attrs)
	m.publishLatency.Record(ctx, durationSeconds, attrs)
}
