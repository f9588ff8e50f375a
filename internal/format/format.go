// Package format holds the pure number-to-string routines shared by the
// renderer and the board: grouped fixed-decimal numbers, compact volume
// notation and signed percentages.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Num renders v with thousands separators and exactly d fraction digits.
func Num(v float64, d int) string {
	pattern := "#,###."
	if d > 0 {
		pattern += strings.Repeat("#", d)
	}
	return humanize.FormatFloat(pattern, v)
}

// Compact renders large magnitudes with a K/M/B/T suffix and at most two
// fraction digits, e.g. 1234567 -> "1.23M".
func Compact(v float64) string {
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}

	var (
		unit  string
		scale float64 = 1
	)
	switch {
	case v >= 1e12:
		unit, scale = "T", 1e12
	case v >= 1e9:
		unit, scale = "B", 1e9
	case v >= 1e6:
		unit, scale = "M", 1e6
	case v >= 1e3:
		unit, scale = "K", 1e3
	}

	s := fmt.Sprintf("%.2f", v/scale)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return neg + s + unit
}

// Pct renders a signed percentage with two fraction digits ("+1.25%").
func Pct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// PriceDecimals is the display precision rule for prices: two fraction
// digits above 1000, four below.
func PriceDecimals(last float64) int {
	if last >= 1000 {
		return 2
	}
	return 4
}

// BarTime renders a bar timestamp (ms since epoch) for the tooltip.
func BarTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("Jan 02 15:04")
}
