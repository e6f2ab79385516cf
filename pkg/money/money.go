// Package money formats amounts held in minor currency units with a shop
// money format such as "${{amount}}" or "{{amount_with_comma_separator}} €".
package money

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const DefaultFormat = "${{amount}}"

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Format renders cents with format. Only the first placeholder is replaced;
// an unknown placeholder renders as empty and a format without one is
// returned unchanged.
func Format(cents int64, format string) string {
	if format == "" {
		format = DefaultFormat
	}

	loc := placeholder.FindStringSubmatchIndex(format)
	if loc == nil {
		return format
	}

	var value string
	switch format[loc[2]:loc[3]] {
	case "amount":
		value = withDelimiters(cents, 2, ",", ".")
	case "amount_no_decimals":
		value = withDelimiters(cents, 0, ",", ".")
	case "amount_with_comma_separator":
		value = withDelimiters(cents, 2, ".", ",")
	case "amount_no_decimals_with_comma_separator":
		value = withDelimiters(cents, 0, ".", ",")
	}

	return format[:loc[0]] + value + format[loc[1]:]
}

// FormatString accepts an amount written either in cents ("300") or with a
// decimal point ("3.00"); the point is dropped before formatting.
func FormatString(amount, format string) (string, error) {
	cleaned := strings.Replace(strings.TrimSpace(amount), ".", "", 1)
	cents, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return Format(cents, format), nil
}

func withDelimiters(cents int64, precision int, thousands, decimal string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	units := cents / 100
	fraction := cents % 100
	if precision == 0 {
		if fraction >= 50 {
			units++
		}
		return sign + groupThousands(strconv.FormatInt(units, 10), thousands)
	}

	return sign + groupThousands(strconv.FormatInt(units, 10), thousands) + decimal + fmt.Sprintf("%02d", fraction)
}

func groupThousands(digits, separator string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
