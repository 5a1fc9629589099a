package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestSpanHelpers(t *testing.T) {
	exp := setupTracerProvider(t)

	ctx, parent := StartSpan(context.Background(), "CatalogService.Wishlist.add")
	_, child := StartSpan(ctx, "WishlistRepository.Add")
	AddSpanAttributes(child, attribute.String("product.id", "42"))
	AddSpanEvent(child, "wishlist.not_found", attribute.String("product.id", "42"))
	RecordSpanError(child, errors.New("boom"))
	child.End()
	SetSpanSuccess(parent)
	parent.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	c, p := spans[0], spans[1]
	if c.Parent.SpanID() != p.SpanContext.SpanID() {
		t.Error("expected child to reference parent")
	}
	if len(c.Attributes) != 1 || c.Attributes[0].Value.AsString() != "42" {
		t.Errorf("expected product.id attribute, got %v", c.Attributes)
	}
	if len(c.Events) != 2 {
		t.Errorf("expected custom event plus error event, got %d", len(c.Events))
	}
	if c.Status.Code != codes.Error || c.Status.Description != "boom" {
		t.Errorf("expected error status, got %v", c.Status)
	}
	if p.Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", p.Status)
	}
}

func TestSpanHelpersIgnoreNil(t *testing.T) {
	AddSpanAttributes(nil, attribute.Bool("x", true))
	AddSpanEvent(nil, "event")
	RecordSpanError(nil, errors.New("boom"))
	SetSpanSuccess(nil)
}

func TestTraceAndSpanID(t *testing.T) {
	if TraceID(context.Background()) != "" || SpanID(context.Background()) != "" {
		t.Error("expected empty ids without a span")
	}

	setupTracerProvider(t)
	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	if got := TraceID(ctx); got != span.SpanContext().TraceID().String() {
		t.Errorf("unexpected trace id %s", got)
	}
	if got := SpanID(ctx); got != span.SpanContext().SpanID().String() {
		t.Errorf("unexpected span id %s", got)
	}
}

func TestEndSpan(t *testing.T) {
	exp := setupTracerProvider(t)

	_, ok := StartSpan(context.Background(), "ok", attribute.String("operation", "list"))
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"))
	EndSpan(nil, nil)

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok || len(spans[0].Attributes) != 1 {
		t.Errorf("expected ok span with start attribute, got %v %v", spans[0].Status, spans[0].Attributes)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected error span, got %v", spans[1].Status)
	}
}
