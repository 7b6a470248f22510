package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meatshare/orderbook-backend/pkg/enums"
	"github.com/meatshare/orderbook-backend/pkg/types"
)

// Order is the single live order a party holds per channel. Lines are the
// authoritative record; ItemsSummary is a display projection regenerated on
// every write and never parsed on a write path.
type Order struct {
	ID      uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	PartyID uuid.UUID     `gorm:"column:party_id;type:uuid;not null;uniqueIndex:idx_orders_party_channel"`
	Channel enums.Channel `gorm:"column:channel;type:text;not null;default:'regular';uniqueIndex:idx_orders_party_channel"`

	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ItemsSummary string            `gorm:"column:items_summary;not null"`
	TotalPrice   decimal.Decimal   `gorm:"column:total_price;type:numeric;not null"`
	AmountPaid   decimal.Decimal   `gorm:"column:amount_paid;type:numeric;not null;default:0"`

	// PriceSnapshot freezes catalog prices at submission time so admin
	// edits reprice at the rates the customer saw.
	PriceSnapshot types.PriceSnapshot `gorm:"column:price_snapshot;type:jsonb;serializer:json"`

	Party *Party      `gorm:"foreignKey:PartyID"`
	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLine captures one priced line of an order, in catalog order.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ItemKey   string          `gorm:"column:item_key;not null"`
	Label     string          `gorm:"column:label;not null"`
	Unit      string          `gorm:"column:unit;not null"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric;not null"`
	Position  int             `gorm:"column:position;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
