package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/types"
)

// Service merges persisted price overrides over the configured defaults.
type Service interface {
	Entries(channel enums.Channel) []Entry
	Entry(channel enums.Channel, key string) (Entry, bool)
	CurrentPrices(ctx context.Context, channel enums.Channel) (types.PriceSnapshot, error)
	PricedEntries(ctx context.Context, channel enums.Channel) ([]Entry, error)
	UpdatePrices(ctx context.Context, values map[string]string) error
}

type service struct {
	repo    Repository
	entries map[enums.Channel][]Entry
	known   map[string]bool
}

// NewService builds the catalog service from configuration defaults.
func NewService(cfg config.CatalogConfig, repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	entries := EntriesFromConfig(cfg)
	known := make(map[string]bool)
	for _, channelEntries := range entries {
		for _, e := range channelEntries {
			known[e.Key] = true
		}
	}
	return &service{repo: repo, entries: entries, known: known}, nil
}

func (s *service) Entries(channel enums.Channel) []Entry {
	return s.entries[channel]
}

func (s *service) Entry(channel enums.Channel, key string) (Entry, bool) {
	for _, e := range s.entries[channel] {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// CurrentPrices returns the effective unit price per item key: the override
// row when one exists, the configured default otherwise.
func (s *service) CurrentPrices(ctx context.Context, channel enums.Channel) (types.PriceSnapshot, error) {
	overrides, err := s.repo.ListOverrides(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price overrides")
	}

	byKey := make(map[string]decimal.Decimal, len(overrides))
	for _, o := range overrides {
		byKey[o.ItemKey] = o.Price
	}

	prices := make(types.PriceSnapshot, len(s.entries[channel]))
	for _, e := range s.entries[channel] {
		if price, ok := byKey[e.Key]; ok {
			prices[e.Key] = price
		} else {
			prices[e.Key] = e.Price
		}
	}
	return prices, nil
}

// PricedEntries returns the channel's entries with effective prices applied,
// in catalog order. Used by the order form and the price admin screen.
func (s *service) PricedEntries(ctx context.Context, channel enums.Channel) ([]Entry, error) {
	prices, err := s.CurrentPrices(ctx, channel)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(s.entries[channel]))
	for _, e := range s.entries[channel] {
		if price, ok := prices.Price(e.Key); ok {
			e.Price = price
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UpdatePrices upserts overrides from raw form values. Policy is best effort:
// unknown keys, empty values, non-numeric values, and non-positive prices are
// skipped without error.
func (s *service) UpdatePrices(ctx context.Context, values map[string]string) error {
	for key, raw := range values {
		if !s.known[key] {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || price.Sign() <= 0 {
			continue
		}
		if err := s.repo.UpsertOverride(ctx, key, price); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price override")
		}
	}
	return nil
}
