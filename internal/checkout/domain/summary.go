package domain

import "strconv"

// TaxRate is expressed in basis points (1/100 of a percent).
type TaxRate int64

// DefaultTaxRate is the flat 24% VAT applied at checkout.
const DefaultTaxRate TaxRate = 2400

// Decimal renders the rate as a fraction, e.g. "0.24".
func (r TaxRate) Decimal() string {
	return strconv.FormatFloat(float64(r)/10000, 'f', -1, 64)
}

// Apply returns the tax on m, rounded half-up to the nearest cent.
func (r TaxRate) Apply(m Money) Money {
	if m <= 0 || r <= 0 {
		return 0
	}
	return Money((int64(m)*int64(r) + 5000) / 10000)
}

// ShippingFees maps a shipping method identifier to its flat fee.
type ShippingFees map[string]Money

// Fee returns the fee for id, or zero when the method is unknown.
func (f ShippingFees) Fee(id string) Money {
	if f == nil {
		return 0
	}
	return f[id]
}

// Summary is the order summary shown next to the checkout form.
type Summary struct {
	Subtotal Money `json:"subtotal_cents"`
	Tax      Money `json:"tax_cents"`
	Shipping Money `json:"shipping_cents"`
	Total    Money `json:"total_cents"`
}

// ComputeSummary derives tax, shipping fee and total for the selected shipping method.
func ComputeSummary(subtotal Money, fees ShippingFees, shippingMethodID string, rate TaxRate) Summary {
	tax := rate.Apply(subtotal)
	fee := fees.Fee(shippingMethodID)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: fee,
		Total:    subtotal + tax + fee,
	}
}

// ResolveSubtotal prefers the page attribute and falls back to the displayed
// currency string when the attribute is missing, unparsable or zero.
func ResolveSubtotal(attribute, displayed string) Money {
	if m, err := ParseMoney(attribute); err == nil && m > 0 {
		return m
	}
	if m, err := ParseMoney(displayed); err == nil {
		return m
	}
	return 0
}
