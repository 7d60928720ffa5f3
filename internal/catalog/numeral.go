package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FoldDigits replaces Persian (۰-۹) and Arabic-Indic (٠-٩) digits with their
// ASCII equivalents. Every other rune is kept as is.
func FoldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		default:
			return r
		}
	}, s)
}

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseNumber parses a numeric string that may contain localized digits.
// Blank, malformed and negative values are reported as not ok, as are values
// that do not fit in an int64 once rounded.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(FoldDigits(s))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.Round(0).GreaterThan(maxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// toAmount rounds a parsed number to the smallest currency unit.
func toAmount(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
