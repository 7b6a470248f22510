package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Party identifies a customer by phone number. Parties are created on first
// submission and outlive any single order.
type Party struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Phone       string    `gorm:"column:phone;size:10;uniqueIndex;not null"`
	// PINHash is an Argon2id hash of the 4-digit PIN, set only in
	// PIN-enabled deployments.
	PINHash   *string   `gorm:"column:pin_hash"`
	Orders    []Order   `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Party) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
