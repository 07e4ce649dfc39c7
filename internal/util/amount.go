package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reAmountJunk = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount reads a monetary cell. Currency symbols, thousand separators and
// stray text are stripped; a comma decimal separator becomes a period.
// Unparseable input is zero, not an error.
func ParseAmount(raw string) float64 {
	s := strings.ReplaceAll(raw, " ", " ")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = reAmountJunk.ReplaceAllString(s, "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// DeriveAmounts fills whichever of total/paid/remaining is absent (exactly
// zero) from the identity total = paid + remaining, then clamps the remaining
// balance so it never goes negative.
func DeriveAmounts(total, paid, remaining float64) (float64, float64, float64) {
	dt := decimal.NewFromFloat(total)
	dp := decimal.NewFromFloat(paid)
	dr := decimal.NewFromFloat(remaining)

	switch {
	case dt.IsZero() && !dp.IsZero() && !dr.IsZero():
		dt = dp.Add(dr)
	case dp.IsZero() && !dt.IsZero() && !dr.IsZero():
		dp = dt.Sub(dr)
	case dr.IsZero() && !dt.IsZero() && !dp.IsZero():
		dr = dt.Sub(dp)
	}

	if dr.IsNegative() {
		dr = decimal.Zero
	}
	if dp.IsNegative() {
		dp = decimal.Zero
	}

	t, _ := dt.Float64()
	p, _ := dp.Float64()
	r, _ := dr.Float64()
	return t, p, r
}
