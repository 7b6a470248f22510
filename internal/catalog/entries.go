package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/enums"
)

// Entry describes one orderable item. Entries are fixed at startup from
// configuration; only their prices can change at runtime, via overrides.
type Entry struct {
	Key   string
	Label string
	Unit  string
	Price decimal.Decimal
	// AllowFraction accepts "a/b" quantity strings, used for animal shares.
	AllowFraction bool
}

// EntriesFromConfig builds the per-channel catalogs. Iteration order of the
// returned slices is the canonical item order used when flattening orders.
func EntriesFromConfig(cfg config.CatalogConfig) map[enums.Channel][]Entry {
	regular := []Entry{
		{Key: "cow", Label: "Cow (lbs)", Unit: "lb", Price: decimal.NewFromFloat(cfg.PriceCow)},
		{Key: "goat", Label: "Goat (lbs)", Unit: "lb", Price: decimal.NewFromFloat(cfg.PriceGoat)},
		{Key: "dh_off", Label: "Desi Hard (Skin OFF)", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceDhOff)},
		{Key: "dh_on", Label: "Desi Hard (Skin ON)", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceDhOn)},
		{Key: "yh", Label: "Young Hen", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceYh)},
		{Key: "r", Label: "Rooster", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceR)},
		{Key: "b", Label: "Broiler", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceB)},
		{Key: "duck", Label: "Duck", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceDuck)},
		{Key: "quail", Label: "Quail", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceQuail)},
		{Key: "turkey", Label: "Turkey", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceTurkey)},
		{Key: "egg", Label: "Egg (Dozen)", Unit: "dozen", Price: decimal.NewFromFloat(cfg.PriceEgg)},
	}

	seasonal := []Entry{
		{Key: "cow_share", Label: "Cow Share", Unit: "share", Price: decimal.NewFromFloat(cfg.PriceCowShare), AllowFraction: true},
		{Key: "goat_full", Label: "Whole Goat", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceGoatFull)},
		{Key: "lamb", Label: "Lamb", Unit: "each", Price: decimal.NewFromFloat(cfg.PriceLamb)},
	}

	return map[enums.Channel][]Entry{
		enums.ChannelRegular:  regular,
		enums.ChannelSeasonal: seasonal,
	}
}
