package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	CardNumberDigits = 16
	ExpiryDigits     = 4
	CVCDigits        = 3
)

// DigitsOnly drops every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsUpTo(s string, limit int) string {
	d := DigitsOnly(s)
	if len(d) > limit {
		d = d[:limit]
	}
	return d
}

// FormatCardNumber renders up to 16 digits as "1234 1234 1234 1234".
func FormatCardNumber(s string) string {
	d := digitsUpTo(s, CardNumberDigits)

	var b strings.Builder
	for i := 0; i < len(d); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// FormatExpiry renders up to 4 digits as MM/YY, inserting the slash once a third digit is typed.
func FormatExpiry(s string) string {
	d := digitsUpTo(s, ExpiryDigits)
	if len(d) > 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

// FormatCVC keeps at most three digits.
func FormatCVC(s string) string {
	return digitsUpTo(s, CVCDigits)
}

// AllowKey reports whether a keypress may reach a digits-only field.
// Named keys (Backspace, Tab, ArrowLeft, ...) are never suppressed.
func AllowKey(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return key != ""
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r >= '0' && r <= '9'
}

// ExpiryReason classifies an expiry validation failure.
type ExpiryReason int

const (
	ExpiryBadFormat ExpiryReason = iota + 1
	ExpiryBadMonth
	ExpiryInPast
)

// ExpiryError is a user-facing expiry validation failure.
type ExpiryError struct {
	Reason ExpiryReason
}

func (e *ExpiryError) Error() string {
	switch e.Reason {
	case ExpiryBadMonth:
		return "Enter a valid month (01-12)."
	case ExpiryInPast:
		return "Expiry date cannot be in the past."
	default:
		return "Enter a valid date in MM/YY format."
	}
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)

// ValidateExpiry checks an MM/YY value against the calendar month of now.
// A two digit year YY is read as 2000+YY. The current month is still valid.
func ValidateExpiry(value string, now time.Time) error {
	m := expiryPattern.FindStringSubmatch(value)
	if m == nil {
		return &ExpiryError{Reason: ExpiryBadFormat}
	}

	month, _ := strconv.Atoi(m[1])
	yy, _ := strconv.Atoi(m[2])
	year := 2000 + yy

	if month < 1 || month > 12 {
		return &ExpiryError{Reason: ExpiryBadMonth}
	}

	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return &ExpiryError{Reason: ExpiryInPast}
	}

	return nil
}

// ExpiryMessage is ValidateExpiry as a constraint-validation message; empty means valid.
func ExpiryMessage(value string, now time.Time) string {
	if err := ValidateExpiry(value, now); err != nil {
		return err.Error()
	}
	return ""
}
