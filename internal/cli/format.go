// Package cli provides formatting, rendering, and export utilities for
// terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCost formats an annual dollar amount rounded to whole dollars.
// e.g., 1234.5 -> "$1,235", -80 -> "-$80"
func FormatCost(cost float64) string {
	if cost < 0 {
		return "-" + FormatCost(-cost)
	}
	return "$" + FormatNumber(int64(math.Round(cost)))
}

// FormatCents formats a dollar amount with cents.
// e.g., 1234.5 -> "$1,234.50"
func FormatCents(cost float64) string {
	if cost < 0 {
		return "-" + FormatCents(-cost)
	}
	cents := int64(math.Round(cost * 100))
	return fmt.Sprintf("$%s.%02d", FormatNumber(cents/100), cents%100)
}

// FormatMonthly formats an annual amount as a per-month cost.
func FormatMonthly(annual float64) string {
	return FormatCents(annual/12) + "/mo"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the difference from a reference amount with a sign.
func FormatDelta(current, reference float64) string {
	delta := current - reference
	if delta >= 0 {
		return "+" + FormatCost(delta)
	}
	return "-" + FormatCost(-delta)
}

// FormatOptional formats an optional amount, or "n/a" when absent.
func FormatOptional(v *float64, format func(float64) string) string {
	if v == nil {
		return "n/a"
	}
	return format(*v)
}
