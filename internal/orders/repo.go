package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/enums"
)

// Repository persists orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPartyAndChannel(ctx context.Context, partyID uuid.UUID, channel enums.Channel) (*models.Order, error)
	ListByChannel(ctx context.Context, channel enums.Channel) ([]models.Order, error)
	ListConfirmedByChannel(ctx context.Context, channel enums.Channel) ([]models.Order, error)
	CountByChannel(ctx context.Context, channel enums.Channel) (int64, error)
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ReplaceContents(ctx context.Context, order *models.Order, lines []models.OrderLine) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdateAmountPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChannel(ctx context.Context, channel enums.Channel) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Party").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPartyAndChannel(ctx context.Context, partyID uuid.UUID, channel enums.Channel) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND channel = ?", partyID, channel).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByChannel(ctx context.Context, channel enums.Channel) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Party").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("channel = ?", channel).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListConfirmedByChannel(ctx context.Context, channel enums.Channel) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Party").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("channel = ? AND status = ?", channel, enums.OrderStatusConfirmed).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CountByChannel(ctx context.Context, channel enums.Channel) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("channel = ?", channel).
		Count(&count).Error
	return count, err
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ReplaceContents overwrites the order row and swaps its lines for the
// provided set. Used by both resubmission and admin edit.
func (r *repository) ReplaceContents(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"items_summary":  order.ItemsSummary,
			"total_price":    order.TotalPrice,
			"price_snapshot": order.PriceSnapshot,
		}).Error; err != nil {
		return err
	}

	if err := db.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	return db.Create(&lines).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) UpdateAmountPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("amount_paid", amount).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{}).Error
}

func (r *repository) DeleteByChannel(ctx context.Context, channel enums.Channel) error {
	return r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Delete(&models.Order{}).Error
}
