package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/storefront/internal/checkout/metrics"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableService struct {
	next    Checkout
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableService(next Checkout, logger *slog.Logger, metrics *metrics.Metrics) *ObservableService {
	return &ObservableService{
		next:    next,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableService) PageConfig(ctx context.Context, input PageConfigInput) (*PageConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.PageConfig")
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.RecordDuration(ctx, "page_config", time.Since(start).Seconds())
	}()

	cfg, err := o.next.PageConfig(ctx, input)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to build checkout page config", "error", err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int("checkout.shipping_methods", len(cfg.ShippingFees)),
		attribute.Int("checkout.payment_methods", len(cfg.PaymentMethods)),
	)
	telemetry.SetSpanSuccess(span)
	return cfg, nil
}

func (o *ObservableService) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.Quote")
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.RecordDuration(ctx, "quote", time.Since(start).Seconds())
	}()

	telemetry.AddSpanAttributes(span, attribute.String("checkout.shipping_method_id", input.ShippingMethodID))

	quote, err := o.next.Quote(ctx, input)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to quote checkout summary",
			"error", err,
			"shipping_method_id", input.ShippingMethodID,
		)
		return nil, err
	}

	o.metrics.RecordQuote(ctx, input.ShippingMethodID)
	telemetry.AddSpanAttributes(span,
		attribute.Int64("checkout.subtotal_cents", int64(quote.Subtotal)),
		attribute.Int64("checkout.total_cents", int64(quote.Total)),
	)
	o.logger.DebugContext(ctx, "checkout summary quoted",
		"shipping_method_id", input.ShippingMethodID,
		"total_cents", int64(quote.Total),
	)

	telemetry.SetSpanSuccess(span)
	return quote, nil
}

func (o *ObservableService) ValidateSubmission(ctx context.Context, form CheckoutForm) (*Submission, error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.ValidateSubmission")
	defer span.End()

	start := time.Now()
	var valid bool
	defer func() {
		o.metrics.RecordDuration(ctx, "validate_submission", time.Since(start).Seconds())
		o.metrics.RecordValidation(ctx, valid)
	}()

	telemetry.AddSpanAttributes(span,
		attribute.String("checkout.shipping_method_id", form.ShippingMethodID),
		attribute.String("checkout.payment_method_id", form.PaymentMethodID),
	)

	submission, err := o.next.ValidateSubmission(ctx, form)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			telemetry.AddSpanEvent(span, "checkout.validation_failed",
				attribute.Int("checkout.invalid_fields", len(verr.Fields)),
			)
			o.logger.InfoContext(ctx, "checkout submission rejected", "fields", len(verr.Fields))
			return nil, err
		}
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to validate checkout submission", "error", err)
		return nil, err
	}

	valid = true
	telemetry.SetSpanSuccess(span)
	o.logger.InfoContext(ctx, "checkout submission accepted",
		"payment_method_id", submission.PaymentMethod.ID,
		"total_cents", int64(submission.Quote.Total),
	)
	return submission, nil
}
