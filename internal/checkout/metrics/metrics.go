package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	quotesTotal       metric.Int64Counter
	validationsTotal  metric.Int64Counter
	operationDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.quotesTotal, err = meter.Int64Counter(
		"checkout_quotes_total",
		metric.WithDescription("Total number of checkout summary quotes"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_quotes_total counter: %w", err)
	}

	m.validationsTotal, err = meter.Int64Counter(
		"checkout_validations_total",
		metric.WithDescription("Total number of checkout submission validations"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_validations_total counter: %w", err)
	}

	m.operationDuration, err = meter.Float64Histogram(
		"checkout_operation_duration_seconds",
		metric.WithDescription("Duration of checkout operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_operation_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordQuote(ctx context.Context, shippingMethodID string) {
	m.quotesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("shipping_method", shippingMethodID),
	))
}

func (m *Metrics) RecordValidation(ctx context.Context, valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

func (m *Metrics) RecordDuration(ctx context.Context, operation string, durationSeconds float64) {
	m.operationDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
