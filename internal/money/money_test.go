package money

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []string{"", "   ", "abc", "1,000.00", "-0.01", "-5", "NaN", "Inf", "12.3.4"}
	for _, in := range cases {
		_, err := Parse(in)
		require.Truef(t, errors.Is(err, ErrInvalidAmount), "input %q: expected ErrInvalidAmount, got %v", in, err)
	}
}

func TestParseFloatRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5} {
		_, err := ParseFloat(f)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
	a, err := ParseFloat(60.25)
	require.NoError(t, err)
	require.True(t, a.Equal(MustParse("60.25")))
}

func TestParseAnyShapes(t *testing.T) {
	for _, v := range []any{"100.00", json.Number("100"), float64(100), int64(100), 100} {
		a, err := ParseAny(v)
		require.NoError(t, err)
		require.True(t, a.Equal(MustParse("100")), "value %v", v)
	}
	a, err := ParseAny(nil)
	require.NoError(t, err)
	require.True(t, a.IsZero())

	_, err = ParseAny(true)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAny(int64(-1))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseAnyKeepsLargeIntegersExact(t *testing.T) {
	a, err := ParseAny(int(1<<53 + 1))
	require.NoError(t, err)
	require.Equal(t, "9007199254740993", a.Format())

	_, err = ParseAny(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFitsScale(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"100", true},
		{"0.0001", true},
		{"1.50000000", true},
		{"0.00001", false},
		{"100.00005", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, MustParse(tc.in).FitsScale(StorageScale), "input %s", tc.in)
	}
	require.True(t, Zero().FitsScale(0))
}

func TestFormatRoundTrip(t *testing.T) {
	for _, in := range []string{"0", "0.00", "0.01", "0.001", "1", "99.99", "100.00", "123456789012345.6789"} {
		a := MustParse(in)
		back, err := Parse(a.Format())
		require.NoError(t, err)
		require.True(t, back.Equal(a), "round trip of %q produced %s", in, back)
	}
}

func TestArithmeticIsExact(t *testing.T) {
	total := Zero()
	for i := 0; i < 10; i++ {
		total = Add(total, MustParse("0.1"))
	}
	require.True(t, total.Equal(MustParse("1")))
	require.Equal(t, 0, Compare(Sum(MustParse("60.00"), MustParse("40.00")), MustParse("100")))

	diff := Sub(MustParse("99.99"), MustParse("100.00"))
	require.True(t, diff.IsNegative())
	require.True(t, diff.Abs().Equal(MustParse("0.01")))
	require.Equal(t, -1, Compare(MustParse("1"), MustParse("2")))
	require.Equal(t, 1, Compare(MustParse("2"), MustParse("1")))
}

func TestMinorUnit(t *testing.T) {
	require.True(t, MinorUnit("USD").Equal(MustParse("0.01")))
	require.True(t, MinorUnit("JPY").Equal(MustParse("1")))
	require.True(t, MinorUnit("BHD").Equal(MustParse("0.001")))
	require.True(t, MinorUnit("???").Equal(MustParse("0.01")))
}

func TestValidCurrency(t *testing.T) {
	require.True(t, ValidCurrency("IDR"))
	require.True(t, ValidCurrency("EUR"))
	require.False(t, ValidCurrency("XYZ1"))
	require.False(t, ValidCurrency(""))
}

func TestDisplayUsesCurrencyScale(t *testing.T) {
	require.True(t, strings.HasSuffix(Display(MustParse("1234.5"), "USD"), "1234.50"))
	require.True(t, strings.HasSuffix(Display(MustParse("1234"), "JPY"), "1234"))
	require.Equal(t, "12.30", Display(MustParse("12.3"), "not-a-code"))
}

func TestJSONRoundTripAndStrictness(t *testing.T) {
	var payload struct {
		Debit  Amount `json:"debit"`
		Credit Amount `json:"credit"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"debit":"100.10","credit":0.5}`), &payload))
	require.True(t, payload.Debit.Equal(MustParse("100.10")))
	require.True(t, payload.Credit.Equal(MustParse("0.5")))

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"debit":"100.1","credit":"0.5"}`, string(raw))

	err = json.Unmarshal([]byte(`{"debit":"-1"}`), &payload)
	require.ErrorIs(t, err, ErrInvalidAmount)
	err = json.Unmarshal([]byte(`{"debit":"ten"}`), &payload)
	require.ErrorIs(t, err, ErrInvalidAmount)
}
