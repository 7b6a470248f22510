package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
)

// Repository persists keyed numeric settings.
type Repository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key string, value decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) Upsert(ctx context.Context, key string, value decimal.Decimal) error {
	setting := models.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

// Service exposes the shared-cost register.
type Service interface {
	SharedCost(ctx context.Context) (decimal.Decimal, error)
	SetSharedCost(ctx context.Context, value decimal.Decimal) error
}

type service struct {
	repo Repository
}

// NewService builds the settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// SharedCost returns the admin-set lump sum, zero when never set.
func (s *service) SharedCost(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.repo.Get(ctx, models.SettingKeySharedCost)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read shared cost")
	}
	return setting.Value, nil
}

func (s *service) SetSharedCost(ctx context.Context, value decimal.Decimal) error {
	if err := s.repo.Upsert(ctx, models.SettingKeySharedCost, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert shared cost")
	}
	return nil
}

// SharedPerOrder divides the shared cost evenly across orderCount orders.
// Zero orders yields zero rather than a division fault.
func SharedPerOrder(cost decimal.Decimal, orderCount int) decimal.Decimal {
	if orderCount <= 0 {
		return decimal.Zero
	}
	return cost.DivRound(decimal.NewFromInt(int64(orderCount)), 2)
}
