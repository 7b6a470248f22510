package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettingKeySharedCost is the singleton row holding the admin-set lump sum
// divided evenly across regular orders on the dashboard.
const SettingKeySharedCost = "shared_cost"

// Setting is a keyed numeric configuration row.
type Setting struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Key       string          `gorm:"column:key;uniqueIndex;not null"`
	Value     decimal.Decimal `gorm:"column:value;type:numeric;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Setting) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
