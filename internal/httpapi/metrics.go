package httpapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the server-side HTTP instruments. Labels use the matched mux
// pattern, never the raw path, so product ids stay out of series keys.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	responseBytes   metric.Int64Histogram
	inFlight        metric.Int64UpDownCounter
	panicsTotal     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.requestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("Time to serve an HTTP request"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create http_request_duration_seconds: %w", err)
	}

	if m.requestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Served HTTP requests by route and status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	if m.responseBytes, err = meter.Int64Histogram("http_response_size_bytes",
		metric.WithDescription("Bytes written in HTTP response bodies"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("create http_response_size_bytes: %w", err)
	}

	if m.inFlight, err = meter.Int64UpDownCounter("http_requests_in_flight",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create http_requests_in_flight: %w", err)
	}

	if m.panicsTotal, err = meter.Int64Counter("http_panics_total",
		metric.WithDescription("Panics recovered while serving HTTP requests"),
		metric.WithUnit("{panic}"),
	); err != nil {
		return nil, fmt.Errorf("create http_panics_total: %w", err)
	}

	return &m, nil
}

// RequestStarted marks a request in flight; call the returned func when it ends.
func (m *Metrics) RequestStarted(ctx context.Context, method string) func() {
	attrs := metric.WithAttributes(attribute.String("method", method))
	m.inFlight.Add(ctx, 1, attrs)
	return func() { m.inFlight.Add(ctx, -1, attrs) }
}

// RecordRequest records one served request under its route pattern.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, statusCode int, durationSeconds float64) {
	routeAttrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
	}
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(append(routeAttrs, attribute.Int("status_code", statusCode))...))
	m.requestDuration.Record(ctx, durationSeconds, metric.WithAttributes(routeAttrs...))
}

func (m *Metrics) RecordResponseSize(ctx context.Context, route string, n int64) {
	m.responseBytes.Record(ctx, n, metric.WithAttributes(attribute.String("route", route)))
}

func (m *Metrics) RecordPanic(ctx context.Context, route string) {
	m.panicsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
