package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// newValidator returns a validator that reports JSON field names and knows
// the notblank tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// firstViolation turns the first validator failure into a ValidationError.
func firstViolation(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required", "notblank":
		return &ValidationError{Field: field, Message: "is required"}
	case "min":
		return &ValidationError{Field: field, Message: "must not be empty"}
	case "startswith":
		return &ValidationError{Field: field, Message: "must be a data URL"}
	case "gte", "gt":
		return &ValidationError{Field: field, Message: "must be at least " + fe.Param()}
	default:
		return &ValidationError{Field: field, Message: "is invalid"}
	}
}

// fieldPath drops the root struct name: "CheckoutRequest.items[0].name" -> "items[0].name".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
