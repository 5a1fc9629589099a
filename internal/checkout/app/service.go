package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/checkout/domain"
	"github.com/dejobratic/storefront/internal/checkout/ports"
	"github.com/go-playground/validator/v10"
)

// Checkout is the server-side checkout API used by the HTTP adapter.
type Checkout interface {
	PageConfig(ctx context.Context, input PageConfigInput) (*PageConfig, error)
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	ValidateSubmission(ctx context.Context, form CheckoutForm) (*Submission, error)
}

// Settings are the pricing settings shared by every checkout page.
type Settings struct {
	Currency string
	TaxRate  domain.TaxRate
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service recomputes totals and re-validates submissions on the server.
// Client-side validation is advisory; this is the authoritative check.
type Service struct {
	catalog  ports.Catalog
	settings Settings
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires required dependencies.
func NewService(catalog ports.Catalog, settings Settings) *Service {
	if settings.TaxRate == 0 {
		settings.TaxRate = domain.DefaultTaxRate
	}
	if settings.Currency == "" {
		settings.Currency = domain.DefaultCurrency
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}

	return &Service{
		catalog:  catalog,
		settings: settings,
		validate: newValidator(),
		now:      settings.Clock,
	}
}

// PageConfigInput carries the per-request values rendered into the page.
type PageConfigInput struct {
	UserName string `json:"user_name"`
	Subtotal string `json:"subtotal"`
}

// PageConfig assembles the explicit configuration handed to the checkout controller.
func (s *Service) PageConfig(ctx context.Context, input PageConfigInput) (*PageConfig, error) {
	shipping, err := s.catalog.ShippingMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipping methods: %w", err)
	}

	payment, err := s.catalog.PaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}

	return &PageConfig{
		Currency:       s.settings.Currency,
		TaxRate:        s.settings.TaxRate,
		ShippingFees:   domain.FeesOf(shipping),
		PaymentMethods: payment,
		Subtotal:       input.Subtotal,
		UserName:       input.UserName,
	}, nil
}

// QuoteInput captures what the page knows when the shipping method changes.
type QuoteInput struct {
	Subtotal          string `json:"subtotal"`
	DisplayedSubtotal string `json:"displayed_subtotal"`
	ShippingMethodID  string `json:"shipping_method_id"`
}

// Quote is a computed summary plus its rendered form.
type Quote struct {
	domain.Summary
	Currency    string `json:"currency"`
	SubtotalFmt string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	TaxAmount   string `json:"tax_amount"`
	OrderTotal  string `json:"order_total"`
}

func (s *Service) newQuote(summary domain.Summary) *Quote {
	return &Quote{
		Summary:     summary,
		Currency:    s.settings.Currency,
		SubtotalFmt: domain.FormatMoney(s.settings.Currency, summary.Subtotal),
		DeliveryFee: domain.FormatMoney(s.settings.Currency, summary.Shipping),
		TaxAmount:   domain.FormatMoney(s.settings.Currency, summary.Tax),
		OrderTotal:  domain.FormatMoney(s.settings.Currency, summary.Total),
	}
}

// Quote recomputes the order summary. Unknown shipping methods cost nothing.
func (s *Service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	shipping, err := s.catalog.ShippingMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipping methods: %w", err)
	}

	subtotal := domain.ResolveSubtotal(input.Subtotal, input.DisplayedSubtotal)
	summary := domain.ComputeSummary(subtotal, domain.FeesOf(shipping), input.ShippingMethodID, s.settings.TaxRate)

	return s.newQuote(summary), nil
}

// CheckoutForm is the submitted checkout form.
type CheckoutForm struct {
	ShippingAddress    string `json:"shipping_address" validate:"required,min=5,max=255"`
	ShippingCity       string `json:"shipping_city" validate:"required,max=100"`
	ShippingState      string `json:"shipping_state" validate:"max=100"`
	ShippingPostalCode string `json:"shipping_postal_code" validate:"required,numeric,min=3,max=10"`
	ShippingCountry    string `json:"shipping_country" validate:"required,max=100"`
	ShippingPhone      string `json:"shipping_phone" validate:"required,numeric,min=10,max=15"`
	ShippingMethodID   string `json:"shipping_method_id" validate:"required"`
	PaymentMethodID    string `json:"payment_method_id" validate:"required"`
	CardholderName     string `json:"cardholder_name" validate:"max=100"`
	CardNumber         string `json:"card_number"`
	CardExpiry         string `json:"card_expiry"`
	CardCVC            string `json:"card_cvc"`
	Subtotal           string `json:"subtotal" validate:"required"`
	CustomerNotes      string `json:"customer_notes" validate:"max=1000"`
}

// Normalize applies the same input formatting the page applies while typing.
// The formatters truncate, so length checks must run on the submitted values.
func (f CheckoutForm) Normalize() CheckoutForm {
	f.ShippingPhone = domain.DigitsOnly(f.ShippingPhone)
	f.ShippingPostalCode = domain.DigitsOnly(f.ShippingPostalCode)
	f.CardNumber = domain.FormatCardNumber(f.CardNumber)
	f.CardExpiry = domain.FormatExpiry(f.CardExpiry)
	f.CardCVC = domain.FormatCVC(f.CardCVC)
	return f
}

// Submission is a validated checkout form and its recomputed summary.
type Submission struct {
	Form          CheckoutForm         `json:"form"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Quote         *Quote               `json:"quote"`
}

// ValidateSubmission normalizes and validates form, returning *ValidationError
// with per-field messages when the form would have been blocked on the page.
func (s *Service) ValidateSubmission(ctx context.Context, form CheckoutForm) (*Submission, error) {
	raw := form
	form = form.Normalize()

	fields := FieldErrors{}
	if err := s.validate.Struct(form); err != nil {
		if ferr := fromValidatorError(err); ferr != nil {
			fields.merge(ferr)
		} else {
			return nil, fmt.Errorf("validate checkout form: %w", err)
		}
	}

	shipping, err := s.catalog.ShippingMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipping methods: %w", err)
	}
	payment, err := s.catalog.PaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}

	fees := domain.FeesOf(shipping)
	if _, ok := fees[form.ShippingMethodID]; form.ShippingMethodID != "" && !ok {
		fields.add("shipping_method_id", "Select a valid delivery option.")
	}

	method, found := findPaymentMethod(payment, form.PaymentMethodID)
	if form.PaymentMethodID != "" && !found {
		fields.add("payment_method_id", "Select a valid payment method.")
	}
	if found && method.RequiresCard {
		s.validateCard(raw, form, fields)
	}

	subtotal, err := domain.ParseMoney(form.Subtotal)
	if err != nil && form.Subtotal != "" {
		fields.add("subtotal", "Enter a valid amount.")
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if !method.RequiresCard {
		form.CardholderName, form.CardNumber, form.CardExpiry, form.CardCVC = "", "", "", ""
	}

	summary := domain.ComputeSummary(subtotal, fees, form.ShippingMethodID, s.settings.TaxRate)

	return &Submission{
		Form:          form,
		PaymentMethod: method,
		Quote:         s.newQuote(summary),
	}, nil
}

// validateCard checks card fields on the normalized form; digit counts come from
// raw so overlong numbers are rejected rather than cut to length.
func (s *Service) validateCard(raw, form CheckoutForm, fields FieldErrors) {
	if form.CardholderName == "" {
		fields.add(string(ports.FieldCardholderName), messageForTag("required", ""))
	}

	if form.CardNumber == "" {
		fields.add(string(ports.FieldCardNumber), messageForTag("required", ""))
	} else if len(domain.DigitsOnly(raw.CardNumber)) != domain.CardNumberDigits {
		fields.add(string(ports.FieldCardNumber), "Enter the 16 digit card number.")
	}

	if form.CardExpiry == "" {
		fields.add(string(ports.FieldCardExpiry), messageForTag("required", ""))
	} else if msg := domain.ExpiryMessage(form.CardExpiry, s.now()); msg != "" {
		fields.add(string(ports.FieldCardExpiry), msg)
	}

	if form.CardCVC == "" {
		fields.add(string(ports.FieldCardCVC), messageForTag("required", ""))
	} else if len(domain.DigitsOnly(raw.CardCVC)) != domain.CVCDigits {
		fields.add(string(ports.FieldCardCVC), "Enter the 3 digit security code.")
	}
}

func findPaymentMethod(methods []domain.PaymentMethod, id string) (domain.PaymentMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}
