// Package normalize turns user-typed text into values the costing engine can
// compare and compute with: pt-BR formatted numbers into exact decimals and
// free-text product/supplier/material names into canonical join keys.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a number typed either as "1.234,56" (pt-BR) or "1234.56".
// The second return value is false for empty or unparseable input.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	switch {
	case strings.Contains(s, ".") && strings.Count(s, ",") == 1:
		// '.' groups thousands, ',' is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DecimalPtr is ParseDecimal for optional fields: absent input yields nil.
func DecimalPtr(raw string) *decimal.Decimal {
	d, ok := ParseDecimal(raw)
	if !ok {
		return nil
	}
	return &d
}

// DecimalOrZero is ParseDecimal for fields where arithmetic must proceed.
func DecimalOrZero(raw string) decimal.Decimal {
	d, _ := ParseDecimal(raw)
	return d
}

// Percent parses values such as "3,25%" as 3.25.
func Percent(raw string) (decimal.Decimal, bool) {
	return ParseDecimal(strings.ReplaceAll(raw, "%", ""))
}

// OrZero dereferences an optional decimal, treating nil as zero.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
