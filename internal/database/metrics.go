package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records storage query latency and, once a pool is attached, pool saturation.
type Metrics struct {
	meter         metric.Meter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Storage query duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	m.queryErrors, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Storage queries that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_errors counter: %w", err)
	}

	return m, nil
}

// RecordQuery records one query. Errors in ignore are expected outcomes such
// as a missing row and are not counted as failures.
func (m *Metrics) RecordQuery(ctx context.Context, operation string, durationSeconds float64, err error, ignore ...error) {
	outcome := "success"
	if err != nil && !isAny(err, ignore) {
		outcome = "error"
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}

	m.queryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// PoolStats is the subset of pgxpool statistics reported as gauges.
type PoolStats interface {
	Stat() *pgxpool.Stat
}

// ObservePool reports connection counts of pool on every collection.
func (m *Metrics) ObservePool(pool PoolStats) error {
	total, err := m.meter.Int64ObservableGauge(
		"db_pool_connections",
		metric.WithDescription("Open pool connections by state"),
	)
	if err != nil {
		return fmt.Errorf("create db_pool_connections gauge: %w", err)
	}

	maxConns, err := m.meter.Int64ObservableGauge(
		"db_pool_max_connections",
		metric.WithDescription("Configured maximum pool size"),
	)
	if err != nil {
		return fmt.Errorf("create db_pool_max_connections gauge: %w", err)
	}

	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stat := pool.Stat()
		o.ObserveInt64(total, int64(stat.AcquiredConns()), metric.WithAttributes(attribute.String("state", "acquired")))
		o.ObserveInt64(total, int64(stat.IdleConns()), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxConns, int64(stat.MaxConns()))
		return nil
	}, total, maxConns)
	if err != nil {
		return fmt.Errorf("register pool callback: %w", err)
	}

	return nil
}
