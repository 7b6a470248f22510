package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceOverride is an admin-set unit price that wins over the configured
// catalog default for its item key. Overrides are upserted, never deleted.
type PriceOverride struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ItemKey   string          `gorm:"column:item_key;uniqueIndex;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PriceOverride) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
