package types

import "github.com/shopspring/decimal"

// PriceSnapshot is a copy of catalog unit prices taken when an order is
// submitted. Later edits price against these rates, not the current catalog.
type PriceSnapshot map[string]decimal.Decimal

// Price returns the snapshot price for key when present.
func (p PriceSnapshot) Price(key string) (decimal.Decimal, bool) {
	if p == nil {
		return decimal.Zero, false
	}
	price, ok := p[key]
	return price, ok
}

// Clone returns an independent copy of the snapshot.
func (p PriceSnapshot) Clone() PriceSnapshot {
	if p == nil {
		return nil
	}
	out := make(PriceSnapshot, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
