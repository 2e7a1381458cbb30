package summary

import (
	"github.com/shopspring/decimal"
)

// RatioPlaces is the precision margins, runway and tax estimates are rounded to.
const RatioPlaces = 2

var hundred = decimal.NewFromInt(100)

// Ratio is a derived figure whose denominator may be missing. A Ratio with a
// zero or negative denominator is unknown and serializes as JSON null; it is
// never reported as zero.
type Ratio struct {
	value decimal.Decimal
	known bool
}

// Unknown is the ratio of anything over a non-positive denominator.
var Unknown = Ratio{}

// Known wraps a computed ratio value.
func Known(v decimal.Decimal) Ratio {
	return Ratio{value: v, known: true}
}

// Value returns the ratio and whether it is known.
func (r Ratio) Value() (decimal.Decimal, bool) {
	return r.value, r.known
}

// IsKnown reports whether the denominator was positive.
func (r Ratio) IsKnown() bool { return r.known }

func (r Ratio) String() string {
	if !r.known {
		return "n/a"
	}
	return r.value.String()
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return []byte(r.value.String()), nil
}

// divide returns num/den rounded, or Unknown when den <= 0.
func divide(num, den decimal.Decimal) Ratio {
	if !den.IsPositive() {
		return Unknown
	}
	return Known(num.Div(den).Round(RatioPlaces))
}

// percentOf returns part/whole*100 rounded, or Unknown when whole <= 0.
func percentOf(part, whole decimal.Decimal) Ratio {
	if !whole.IsPositive() {
		return Unknown
	}
	return Known(part.Mul(hundred).Div(whole).Round(RatioPlaces))
}

// taxEstimate is the gated tax on a profit. Unlike Ratio it is never
// unknown: when tax is disabled or there is no profit the estimate is zero.
func taxEstimate(profit decimal.Decimal, enabled bool, ratePercent decimal.Decimal) decimal.Decimal {
	if !enabled || !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(ratePercent).Div(hundred).Round(RatioPlaces)
}
