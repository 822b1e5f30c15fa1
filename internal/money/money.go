// Package money carries exact decimal amounts for ledger arithmetic.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates malformed, non-finite or negative numeric input.
var ErrInvalidAmount = errors.New("money: invalid amount")

// StorageScale is the number of decimal places the ledger persists.
const StorageScale int32 = 4

// Amount is an exact decimal value. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// New wraps a decimal without boundary checks. Negative values are allowed so
// that domain validators can report them explicitly.
func New(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// MustParse parses s and panics on failure. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse converts user input into an Amount, rejecting negatives.
func Parse(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Amount{}, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return Amount{d: d}, nil
}

// ParseFloat converts a float input, rejecting NaN, infinities and negatives.
func ParseFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, f)
	}
	if f < 0 {
		return Amount{}, fmt.Errorf("%w: %v is negative", ErrInvalidAmount, f)
	}
	return Amount{d: decimal.NewFromFloat(f)}, nil
}

// ParseAny accepts the shapes numbers arrive in from forms and JSON.
func ParseAny(v any) (Amount, error) {
	switch x := v.(type) {
	case nil:
		return Zero(), nil
	case Amount:
		if x.IsNegative() {
			return Amount{}, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, x)
		}
		return x, nil
	case string:
		return Parse(x)
	case json.Number:
		return Parse(x.String())
	case float64:
		return ParseFloat(x)
	case float32:
		return ParseFloat(float64(x))
	case int:
		return parseInt(int64(x))
	case int64:
		return parseInt(x)
	default:
		return Amount{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func parseInt(x int64) (Amount, error) {
	if x < 0 {
		return Amount{}, fmt.Errorf("%w: %d is negative", ErrInvalidAmount, x)
	}
	return Amount{d: decimal.NewFromInt(x)}, nil
}

// Add returns a + b.
func Add(a, b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func Sub(a, b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Amount{d: total}
}

// Compare returns -1, 0 or +1.
func Compare(a, b Amount) int {
	return a.d.Cmp(b.d)
}

// Decimal exposes the underlying value for persistence.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// FitsScale reports whether the amount needs no more than places decimals.
// Trailing zeros do not count, so 1.50000 fits a scale of 1.
func (a Amount) FitsScale(places int32) bool {
	return a.d.Equal(a.d.Truncate(places))
}

// Equal compares by value, so 1.0 equals 1.00.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	return Amount{d: a.d.Abs()}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

// Format renders the canonical decimal form accepted by Parse.
func (a Amount) Format() string {
	return a.d.String()
}

// FormatFixed renders the amount with exactly places decimals.
func (a Amount) FormatFixed(places int32) string {
	return a.d.StringFixed(places)
}

func (a Amount) String() string {
	return a.Format()
}

// MarshalJSON encodes the amount as a JSON string to keep precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.d.String())
}

// UnmarshalJSON accepts strings or numbers and applies Parse rules.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	parsed, err := ParseAny(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
