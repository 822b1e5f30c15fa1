package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultScale = 2

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	_, err := currency.ParseISO(strings.TrimSpace(code))
	return err == nil
}

// Scale returns the number of decimals used by the currency's minor unit.
func Scale(code string) int32 {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return defaultScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// MinorUnit returns the smallest representable amount for the currency,
// e.g. 0.01 for USD, 1 for JPY and 0.001 for BHD. Unknown codes use 0.01.
func MinorUnit(code string) Amount {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return Amount{d: decimal.New(1, -defaultScale)}
	}
	scale, increment := currency.Standard.Rounding(unit)
	if increment <= 0 {
		increment = 1
	}
	return Amount{d: decimal.New(int64(increment), -int32(scale))}
}

// Display renders an amount for people: currency symbol followed by the
// amount at the currency's scale. Display output is never parsed back.
func Display(a Amount, code string) string {
	places := Scale(code)
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return a.FormatFixed(places)
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(currency.Symbol(unit)) + a.d.Round(places).StringFixed(places)
}
