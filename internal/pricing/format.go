package pricing

import "github.com/shopspring/decimal"

// FormatDecimal rounds half away from zero to the given number of fractional
// digits. Use only when presenting a value.
func FormatDecimal(d decimal.Decimal, places int32) string {
	if places < 0 {
		places = 0
	}
	return d.StringFixed(places)
}
