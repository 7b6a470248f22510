package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/enums"
)

type stubRepo struct {
	overrides []models.PriceOverride
	upserts   map[string]decimal.Decimal
	listErr   error
}

func (s *stubRepo) ListOverrides(ctx context.Context) ([]models.PriceOverride, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.overrides, nil
}

func (s *stubRepo) UpsertOverride(ctx context.Context, itemKey string, price decimal.Decimal) error {
	if s.upserts == nil {
		s.upserts = make(map[string]decimal.Decimal)
	}
	s.upserts[itemKey] = price
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(config.CatalogConfig{
		PriceCow:    4.5,
		PriceGoat:   9.0,
		PriceEgg:    6.0,
		PriceTurkey: 70.0,
	}, repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCurrentPricesDefaults(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})
	prices, err := svc.CurrentPrices(context.Background(), enums.ChannelRegular)
	if err != nil {
		t.Fatalf("current prices: %v", err)
	}

	if got := prices["cow"]; !got.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("expected cow default 4.5, got %s", got)
	}
	if got := prices["egg"]; !got.Equal(decimal.NewFromFloat(6.0)) {
		t.Fatalf("expected egg default 6.0, got %s", got)
	}
}

func TestCurrentPricesOverridesWin(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{overrides: []models.PriceOverride{
		{ItemKey: "cow", Price: decimal.NewFromFloat(5.25)},
	}}
	svc := newTestService(t, repo)

	prices, err := svc.CurrentPrices(context.Background(), enums.ChannelRegular)
	if err != nil {
		t.Fatalf("current prices: %v", err)
	}
	if got := prices["cow"]; !got.Equal(decimal.NewFromFloat(5.25)) {
		t.Fatalf("expected override 5.25, got %s", got)
	}
	if got := prices["goat"]; !got.Equal(decimal.NewFromFloat(9.0)) {
		t.Fatalf("expected goat to keep default, got %s", got)
	}
}

func TestUpdatePricesBestEffort(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := newTestService(t, repo)

	err := svc.UpdatePrices(context.Background(), map[string]string{
		"cow":      "5.5",
		"goat":     "abc",
		"egg":      "",
		"turkey":   "-3",
		"unknown":  "9.9",
		"cow_share": "700",
	})
	if err != nil {
		t.Fatalf("update prices: %v", err)
	}

	if len(repo.upserts) != 2 {
		t.Fatalf("expected 2 upserts, got %d: %v", len(repo.upserts), repo.upserts)
	}
	if got := repo.upserts["cow"]; !got.Equal(decimal.NewFromFloat(5.5)) {
		t.Fatalf("unexpected cow price %s", got)
	}
	if got := repo.upserts["cow_share"]; !got.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected cow_share price %s", got)
	}
}

func TestEntryLookup(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})

	e, ok := svc.Entry(enums.ChannelRegular, "egg")
	if !ok {
		t.Fatal("expected egg entry")
	}
	if e.Label != "Egg (Dozen)" || e.Unit != "dozen" {
		t.Fatalf("unexpected entry %+v", e)
	}

	if _, ok := svc.Entry(enums.ChannelRegular, "cow_share"); ok {
		t.Fatal("seasonal key must not resolve on regular channel")
	}
	if _, ok := svc.Entry(enums.ChannelSeasonal, "cow_share"); !ok {
		t.Fatal("expected cow_share on seasonal channel")
	}
}

func TestCatalogOrderIsStable(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{})
	entries := svc.Entries(enums.ChannelRegular)

	want := []string{"cow", "goat", "dh_off", "dh_on", "yh", "r", "b", "duck", "quail", "turkey", "egg"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, key := range want {
		if entries[i].Key != key {
			t.Fatalf("position %d: expected %s, got %s", i, key, entries[i].Key)
		}
	}
}
