package parties

import (
	"context"

	"gorm.io/gorm"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
)

// Repository looks up and creates parties keyed by phone number.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByPhone(ctx context.Context, phone string) (*models.Party, error)
	Create(ctx context.Context, party *models.Party) (*models.Party, error)
	SetPINHash(ctx context.Context, party *models.Party, hash string) error
	UpdateDisplayName(ctx context.Context, party *models.Party, name string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a parties repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&party).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *repository) Create(ctx context.Context, party *models.Party) (*models.Party, error) {
	if err := r.db.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

func (r *repository) SetPINHash(ctx context.Context, party *models.Party, hash string) error {
	party.PINHash = &hash
	return r.db.WithContext(ctx).
		Model(party).
		Update("pin_hash", hash).Error
}

func (r *repository) UpdateDisplayName(ctx context.Context, party *models.Party, name string) error {
	party.DisplayName = name
	return r.db.WithContext(ctx).
		Model(party).
		Update("display_name", name).Error
}
