package orders

import (
	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/types"
)

// pricedOrder is the result of pricing a quantity form against a rate table.
type pricedOrder struct {
	Lines   []models.OrderLine
	Summary string
	Total   decimal.Decimal
}

// priceQuantities walks the catalog in entry order, prices every positive
// parseable quantity, and flattens the result. Entries absent from the form,
// unparseable values, and quantities ≤ 0 are dropped silently.
func priceQuantities(entries []catalog.Entry, prices types.PriceSnapshot, quantities map[string]string) pricedOrder {
	var (
		lines    []models.OrderLine
		displays []string
		total    = decimal.Zero
	)

	for _, entry := range entries {
		raw, present := quantities[entry.Key]
		if !present {
			continue
		}
		qty, ok := parseQuantity(raw, entry.AllowFraction)
		if !ok || qty.Sign() <= 0 {
			continue
		}

		unitPrice, ok := prices.Price(entry.Key)
		if !ok {
			unitPrice = entry.Price
		}
		lineTotal := qty.Mul(unitPrice)
		total = total.Add(lineTotal)

		lines = append(lines, models.OrderLine{
			ItemKey:   entry.Key,
			Label:     entry.Label,
			Unit:      entry.Unit,
			Quantity:  qty,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			Position:  len(lines),
		})
		displays = append(displays, quantityDisplay(raw, qty))
	}

	return pricedOrder{
		Lines:   lines,
		Summary: buildSummary(lines, displays),
		Total:   total,
	}
}
