// Package money parses and formats amounts the way Dutch invoices write them.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kantoor/internal/common"
)

// Parse reads a Dutch-locale amount such as "€ 1.234,56" or "-12,5".
//
// When the string holds a comma, dots are thousand separators and are removed before the
// comma becomes the decimal point. A string without a comma is read as plain dot-decimal,
// so the output of Decimal.String parses back to the same value.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "€")
	cleaned = strings.TrimPrefix(cleaned, "EUR")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", common.ErrValidation)
	}

	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", common.ErrValidation, s)
	}
	return d, nil
}

// ParseOrZero is Parse for optional fields: blank or unreadable input yields zero.
func ParseOrZero(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders d with two decimals, dot thousand separators and a decimal comma.
func Format(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatEuro is Format with a euro sign.
func FormatEuro(d decimal.Decimal) string {
	return "€ " + Format(d)
}
