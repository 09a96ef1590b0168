package render

import (
	"strings"

	"github.com/shopspring/decimal"

	"resolution-backend/internal/shared/util"
)

// Filter post-processes substituted text. Filters return their input
// unchanged when it cannot be interpreted.
type Filter func(string) string

var filters = map[string]Filter{
	"longDate": LongDate,
	"money":    Money,
	"pct":      Percent,
}

// ApplyFilter runs the named filter. Unknown names leave text unchanged.
func ApplyFilter(name, text string) string {
	f, ok := filters[strings.TrimSpace(name)]
	if !ok {
		return text
	}
	return f(text)
}

// LongDate formats an ISO calendar date as "March 1, 2025".
func LongDate(s string) string {
	t, ok := util.ParseCalendarDate(s)
	if !ok {
		return s
	}
	return t.Format("January 2, 2006")
}

// Money formats a number as US dollars, e.g. "$1,234.50".
func Money(s string) string {
	d, ok := parseDecimal(s)
	if !ok {
		return s
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + groupThousands(d.StringFixed(2))
}

// Percent formats a value given in hundredths, e.g. "12.5" as "12.50%".
func Percent(s string) string {
	d, ok := parseDecimal(s)
	if !ok {
		return s
	}
	return formatPercent(d.Div(hundred))
}

var hundred = decimal.NewFromInt(100)

// formatPercent renders a ratio as a percentage with two decimals.
func formatPercent(ratio decimal.Decimal) string {
	display := ratio.Mul(hundred)
	sign := ""
	if display.IsNegative() {
		sign = "-"
		display = display.Neg()
	}
	return sign + groupThousands(display.StringFixed(2)) + "%"
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimPrefix(clean, "$")
	if clean == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// groupThousands inserts commas into the integer part of a non-negative fixed-point string.
func groupThousands(fixed string) string {
	intPart, frac, hasFrac := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return fixed
	}
	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}
