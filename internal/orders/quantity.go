package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseQuantity interprets a free-text quantity from the order form. Plain
// decimals are always accepted; "a/b" fractions only for share items. The
// second return is false for anything unparseable, which callers treat as
// "not ordered" rather than an error.
func parseQuantity(raw string, allowFraction bool) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}

	if allowFraction && strings.Contains(raw, "/") {
		parts := strings.SplitN(raw, "/", 2)
		numerator, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
		if err != nil {
			return decimal.Zero, false
		}
		denominator, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil || denominator.IsZero() {
			return decimal.Zero, false
		}
		return numerator.Div(denominator), true
	}

	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return qty, true
}

// quantityDisplay renders a quantity the way it appears in the flattened
// summary: as an integer when there is no fractional part, otherwise as the
// customer typed it (so "1/3" stays "1/3").
func quantityDisplay(raw string, qty decimal.Decimal) string {
	if qty.IsInteger() {
		return qty.Truncate(0).String()
	}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return qty.String()
}
