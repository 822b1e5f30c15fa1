package journal

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var headerValidator = newHeaderValidator()

func newHeaderValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normaliseHeader trims free text and upper-cases the currency code.
func normaliseHeader(h Header) Header {
	h.JournalNumber = strings.TrimSpace(h.JournalNumber)
	h.FiscalPeriodID = strings.TrimSpace(h.FiscalPeriodID)
	h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	h.Description = strings.TrimSpace(h.Description)
	return h
}

// ValidateHeader returns one FieldError per failing header field.
func ValidateHeader(h Header) []error {
	err := headerValidator.Struct(h)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}
	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
