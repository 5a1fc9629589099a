package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestInitializeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	if metrics.quotesTotal == nil {
		t.Error("quotesTotal is nil")
	}
	if metrics.validationsTotal == nil {
		t.Error("validationsTotal is nil")
	}
	if metrics.operationDuration == nil {
		t.Error("operationDuration is nil")
	}
}

func TestRecordValidation(t *testing.T) {
	t.Run("records valid and invalid results as separate series", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		metrics, err := NewMetrics(mp.Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics() failed: %v", err)
		}

		ctx := context.Background()
		metrics.RecordValidation(ctx, true)
		metrics.RecordValidation(ctx, false)
		metrics.RecordValidation(ctx, false)

		m, ok := collect(t, reader)["checkout_validations_total"]
		if !ok {
			t.Fatal("checkout_validations_total metric not found")
		}

		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Fatalf("Expected 2 data points, got %d", len(sum.DataPoints))
		}

		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		if total != 3 {
			t.Errorf("Expected 3 validations, got %d", total)
		}
	})
}

func TestRecordQuoteAndDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordQuote(ctx, "standard")
	metrics.RecordDuration(ctx, "quote", 0.01)
	metrics.RecordDuration(ctx, "validate_submission", 0.02)

	collected := collect(t, reader)

	if _, ok := collected["checkout_quotes_total"]; !ok {
		t.Error("checkout_quotes_total metric not found")
	}

	m, ok := collected["checkout_operation_duration_seconds"]
	if !ok {
		t.Fatal("checkout_operation_duration_seconds metric not found")
	}
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("Expected Histogram[float64] data type")
	}
	if len(histogram.DataPoints) != 2 {
		t.Errorf("Expected 2 data points, got %d", len(histogram.DataPoints))
	}
}
