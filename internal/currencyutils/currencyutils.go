// Package currencyutils provides common currency and decimal operations used throughout the application.
package currencyutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is the smallest amount the application distinguishes from zero.
var Cents = decimal.NewFromFloat(0.01)

// ParseMoney converts a raw export cell into a decimal amount.
// Thousands separators (",") and a leading "$" are stripped and surrounding whitespace
// is trimmed. Empty, non-numeric or malformed input yields zero; it never fails.
func ParseMoney(raw string) decimal.Decimal {
	cleaned := StandardizeAmount(raw)
	if cleaned == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// StandardizeAmount strips the decorations ParseMoney tolerates and returns
// the remaining text, which may still be malformed.
func StandardizeAmount(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	if negative {
		s = "-" + s
	}
	return s
}

// FormatAmount renders an amount with two decimals and a dollar sign, e.g. "$1234.56" or "-$12.00".
func FormatAmount(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// Sign returns -1, 0 or 1 depending on the sign of the amount.
func Sign(amount decimal.Decimal) int {
	return amount.Sign()
}

// IsNegligible reports whether |amount| is below one cent.
func IsNegligible(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(Cents)
}

// IsNegative checks if an amount is negative
func IsNegative(amount decimal.Decimal) bool {
	return amount.LessThan(decimal.Zero)
}

// IsPositive checks if an amount is positive
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

// Sum adds up all the given amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
