package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInitializeMetrics(t *testing.T) {
	t.Run("initializes all metric instruments successfully", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		metrics, err := NewMetrics(mp.Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics() failed: %v", err)
		}

		if metrics.wishlistChangesTotal == nil {
			t.Error("wishlistChangesTotal is nil")
		}
		if metrics.panelRendersTotal == nil {
			t.Error("panelRendersTotal is nil")
		}
		if metrics.panelFetchesTotal == nil {
			t.Error("panelFetchesTotal is nil")
		}
		if metrics.operationDuration == nil {
			t.Error("operationDuration is nil")
		}
	})
}

func TestRecordWishlistChange(t *testing.T) {
	t.Run("records each action and status as its own series", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		metrics, err := NewMetrics(mp.Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics() failed: %v", err)
		}

		ctx := context.Background()
		metrics.RecordWishlistChange(ctx, "add", "added", true)
		metrics.RecordWishlistChange(ctx, "add", "added", true)
		metrics.RecordWishlistChange(ctx, "remove", "removed", true)
		metrics.RecordWishlistChange(ctx, "remove", "", false)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		found := false
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "wishlist_changes_total" {
					continue
				}
				found = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Fatal("Expected Sum[int64] data type")
				}
				if len(sum.DataPoints) != 3 {
					t.Errorf("Expected 3 data points, got %d", len(sum.DataPoints))
				}
			}
		}

		if !found {
			t.Error("wishlist_changes_total metric not found")
		}
	})
}

func TestRecordPanelMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordPanelRender(ctx, 3)
	metrics.RecordPanelFetch(ctx, false)
	metrics.RecordDuration(ctx, "render_recently_viewed", 0.003)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}

	for _, want := range []string{
		"recently_viewed_renders_total",
		"recently_viewed_fetches_total",
		"catalog_operation_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("%s metric not found", want)
		}
	}
}
