package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
)

// Repository persists admin price overrides.
type Repository interface {
	ListOverrides(ctx context.Context) ([]models.PriceOverride, error)
	UpsertOverride(ctx context.Context, itemKey string, price decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListOverrides(ctx context.Context) ([]models.PriceOverride, error) {
	var overrides []models.PriceOverride
	err := r.db.WithContext(ctx).
		Order("item_key ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repository) UpsertOverride(ctx context.Context, itemKey string, price decimal.Decimal) error {
	override := models.PriceOverride{ItemKey: itemKey, Price: price}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(&override).Error
}
