package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
)

type stubRepo struct {
	setting *models.Setting
	stored  map[string]decimal.Decimal
}

func (s *stubRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	if s.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.setting, nil
}

func (s *stubRepo) Upsert(ctx context.Context, key string, value decimal.Decimal) error {
	if s.stored == nil {
		s.stored = make(map[string]decimal.Decimal)
	}
	s.stored[key] = value
	return nil
}

func TestSharedCostDefaultsToZero(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cost, err := svc.SharedCost(context.Background())
	if err != nil {
		t.Fatalf("shared cost: %v", err)
	}
	if !cost.IsZero() {
		t.Fatalf("expected zero default, got %s", cost)
	}
}

func TestSetSharedCost(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.SetSharedCost(context.Background(), decimal.NewFromInt(100)); err != nil {
		t.Fatalf("set shared cost: %v", err)
	}
	if got := repo.stored[models.SettingKeySharedCost]; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected stored value %s", got)
	}
}

func TestSharedPerOrder(t *testing.T) {
	t.Parallel()

	if got := SharedPerOrder(decimal.NewFromInt(100), 4); !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected 25 per order, got %s", got)
	}
	if got := SharedPerOrder(decimal.NewFromInt(100), 0); !got.IsZero() {
		t.Fatalf("expected zero with no orders, got %s", got)
	}
	if got := SharedPerOrder(decimal.NewFromInt(100), 3); !got.Equal(decimal.NewFromFloat(33.33)) {
		t.Fatalf("expected 33.33 per order, got %s", got)
	}
}
