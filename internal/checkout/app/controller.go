package app

import (
	"strings"
	"time"

	"github.com/dejobratic/storefront/internal/checkout/domain"
	"github.com/dejobratic/storefront/internal/checkout/ports"
)

// PageConfig is everything the checkout page needs besides the form itself.
type PageConfig struct {
	Currency       string                 `json:"currency"`
	TaxRate        domain.TaxRate         `json:"tax_rate_bps"`
	ShippingFees   domain.ShippingFees    `json:"shipping_fees"`
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
	// Subtotal is the raw subtotal attribute rendered into the page, if any.
	Subtotal string `json:"subtotal,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Controller keeps the checkout form's visible fields and totals consistent
// with the user's selections.
type Controller struct {
	view         ports.View
	cfg          PageConfig
	requiresCard map[string]bool
	now          func() time.Time
}

type ControllerOption func(*Controller)

// WithClock overrides the clock used for expiry validation.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController builds a controller over view. Call Bind to attach handlers.
func NewController(view ports.View, cfg PageConfig, opts ...ControllerOption) *Controller {
	if cfg.TaxRate == 0 {
		cfg.TaxRate = domain.DefaultTaxRate
	}
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}

	c := &Controller{
		view:         view,
		cfg:          cfg,
		requiresCard: domain.CardRequirements(cfg.PaymentMethods),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind registers every handler and brings the page into its initial state.
func (c *Controller) Bind() {
	c.view.On(ports.FieldPaymentMethod, ports.EventChange, func(*ports.Event) { c.ToggleCardFields() })
	c.view.On(ports.FieldShippingMethod, ports.EventChange, func(*ports.Event) { c.RecomputeSummary() })

	c.view.On(ports.FieldCardNumber, ports.EventInput, c.reformat(ports.FieldCardNumber, domain.FormatCardNumber))
	c.view.On(ports.FieldCardExpiry, ports.EventInput, c.reformat(ports.FieldCardExpiry, domain.FormatExpiry))
	c.view.On(ports.FieldCardExpiry, ports.EventBlur, func(*ports.Event) { c.ValidateExpiry() })
	c.view.On(ports.FieldCardCVC, ports.EventInput, c.reformat(ports.FieldCardCVC, domain.FormatCVC))

	for _, f := range []ports.Field{ports.FieldPhone, ports.FieldPostalCode} {
		c.view.On(f, ports.EventInput, c.reformat(f, domain.DigitsOnly))
		c.view.On(f, ports.EventKeyPress, suppressNonDigits)
	}

	c.view.On(ports.FieldForm, ports.EventSubmit, c.handleSubmit)

	c.ToggleCardFields()
	c.RecomputeSummary()
	c.AutofillCardholder()
}

// CardRequired reports whether the selected payment method needs card details.
func (c *Controller) CardRequired() bool {
	return c.requiresCard[c.view.Value(ports.FieldPaymentMethod)]
}

// ToggleCardFields shows and requires the card inputs only for card-requiring methods.
func (c *Controller) ToggleCardFields() {
	required := c.CardRequired()
	c.view.SetGroupVisible(ports.GroupCardInfo, required)
	for _, f := range ports.CardFields {
		c.view.SetRequired(f, required)
		if !required {
			c.view.SetValidity(f, "")
		}
	}
}

// RecomputeSummary renders fee, tax and total for the selected shipping method.
func (c *Controller) RecomputeSummary() domain.Summary {
	subtotal := domain.ResolveSubtotal(c.cfg.Subtotal, c.view.Text(ports.SlotSubtotal))
	summary := domain.ComputeSummary(subtotal, c.cfg.ShippingFees, c.view.Value(ports.FieldShippingMethod), c.cfg.TaxRate)

	c.view.SetText(ports.SlotDeliveryFee, domain.FormatMoney(c.cfg.Currency, summary.Shipping))
	c.view.SetText(ports.SlotTaxAmount, domain.FormatMoney(c.cfg.Currency, summary.Tax))
	c.view.SetText(ports.SlotOrderTotal, domain.FormatMoney(c.cfg.Currency, summary.Total))

	return summary
}

// ValidateExpiry sets or clears the expiry field's validation message.
func (c *Controller) ValidateExpiry() bool {
	msg := domain.ExpiryMessage(c.view.Value(ports.FieldCardExpiry), c.now())
	c.view.SetValidity(ports.FieldCardExpiry, msg)
	return msg == ""
}

// AutofillCardholder pre-populates an empty cardholder name with the user's name.
func (c *Controller) AutofillCardholder() {
	if c.cfg.UserName == "" || c.view.Value(ports.FieldCardholderName) != "" {
		return
	}
	c.view.SetValue(ports.FieldCardholderName, c.cfg.UserName)
}

// Valid reports whether every required field is filled and no field carries a validation message.
func (c *Controller) Valid() bool {
	for _, f := range formFields {
		if c.view.Validity(f) != "" {
			return false
		}
		if c.view.Required(f) && strings.TrimSpace(c.view.Value(f)) == "" {
			return false
		}
	}
	return true
}

var formFields = []ports.Field{
	ports.FieldPaymentMethod,
	ports.FieldShippingMethod,
	ports.FieldCardholderName,
	ports.FieldCardNumber,
	ports.FieldCardExpiry,
	ports.FieldCardCVC,
	ports.FieldPhone,
	ports.FieldPostalCode,
}

func (c *Controller) handleSubmit(ev *ports.Event) {
	if c.CardRequired() && c.view.Value(ports.FieldCardExpiry) != "" {
		c.ValidateExpiry()
	}
	if !c.Valid() {
		ev.PreventDefault()
	}
}

func (c *Controller) reformat(f ports.Field, format func(string) string) ports.Handler {
	return func(*ports.Event) {
		current := c.view.Value(f)
		if formatted := format(current); formatted != current {
			c.view.SetValue(f, formatted)
		}
	}
}

func suppressNonDigits(ev *ports.Event) {
	if !domain.AllowKey(ev.Key) {
		ev.PreventDefault()
	}
}
