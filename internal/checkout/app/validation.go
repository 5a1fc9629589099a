package app

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (f FieldErrors) add(field, message string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = message
}

func (f FieldErrors) merge(other FieldErrors) {
	for k, v := range other {
		f.add(k, v)
	}
}

// ValidationError reports every invalid field of a submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fromValidatorError converts validator errors to field messages; nil when err is of another kind.
func fromValidatorError(err error) FieldErrors {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := FieldErrors{}
	for _, fe := range ve {
		out.add(fe.Field(), messageForTag(fe.Tag(), fe.Param()))
	}
	return out
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "numeric":
		return "Only digits are allowed."
	case "min":
		return "Must be at least " + param + " characters long."
	case "max":
		return "Cannot exceed " + param + " characters."
	default:
		return "Invalid value."
	}
}
