package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor units (cents).
type Money int64

// DefaultCurrency is used when a page does not name one.
const DefaultCurrency = "USD"

var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrInvalidAmount  = errors.New("amount must be a number")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

var currencyReplacer = strings.NewReplacer("$", "", ",", "", "€", "", "₺", "", " ", "")

// ParseMoney reads a displayed or attribute amount such as "$1,234.50" or "19.9".
func ParseMoney(s string) (Money, error) {
	cleaned := currencyReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, ErrEmptyAmount
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}

	return Money(math.Round(value * 100)), nil
}

// Decimal renders the amount with exactly two decimals and no currency prefix.
func (m Money) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// FormatMoney renders the amount with the prefix used on the storefront pages.
func FormatMoney(currency string, m Money) string {
	switch strings.ToUpper(currency) {
	case "", "USD":
		return "$" + m.Decimal()
	case "EUR":
		return "€" + m.Decimal()
	case "TRY":
		return "₺" + m.Decimal()
	default:
		return m.Decimal() + " " + strings.ToUpper(currency)
	}
}
