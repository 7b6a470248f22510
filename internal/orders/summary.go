package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
)

// EmptySummary is stored when no line qualifies.
const EmptySummary = "No items"

// buildSummary flattens priced lines into the human-readable projection:
// "Label: qty unit, Label: qty unit, ...". displays carries the per-line
// quantity text in line order.
func buildSummary(lines []models.OrderLine, displays []string) string {
	if len(lines) == 0 {
		return EmptySummary
	}
	fragments := make([]string, 0, len(lines))
	for i, line := range lines {
		display := line.Quantity.String()
		if i < len(displays) && displays[i] != "" {
			display = displays[i]
		}
		fragments = append(fragments, line.Label+": "+display+" "+line.Unit)
	}
	return strings.Join(fragments, ", ")
}

// ParseItemsSummary reverse-parses a flattened summary into key → quantity.
// Only needed for orders that predate structured lines; new writes never
// parse this text. The match is best effort: labels containing commas or
// overlapping substrings can mis-parse, which mirrors how these rows were
// written historically.
func ParseItemsSummary(entries []catalog.Entry, summary string) map[string]decimal.Decimal {
	quantities := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		marker := entry.Label + ":"
		idx := strings.Index(summary, marker)
		if idx < 0 {
			continue
		}
		rest := summary[idx+len(marker):]
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = rest[:comma]
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		qty, ok := parseQuantity(fields[0], entry.AllowFraction)
		if !ok || qty.Sign() <= 0 {
			continue
		}
		quantities[entry.Key] = qty
	}
	return quantities
}
