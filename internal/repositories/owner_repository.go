package repositories

import (
	"context"
	"errors"
	"fmt"

	"kopa/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrOwnerNotFound = errors.New("owner not found")

// OwnerRepository covers the minimal user/merchant surface the ledger
// depends on: resolving wallet owners and refreshing their advisory
// cached-balance snapshots.
type OwnerRepository interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetMerchantByName(ctx context.Context, name string) (*models.Merchant, error)
	CreateMerchant(ctx context.Context, merchant *models.Merchant) error

	// Snapshot updates are advisory and never part of the atomic unit.
	UpdateUserBalanceSnapshot(ctx context.Context, userID uint, balance decimal.Decimal) error
	UpdateMerchantBalanceSnapshot(ctx context.Context, merchantID uint, balance decimal.Decimal) error

	// Lookup resolution inputs for the wallet lookup collaborator.
	FindUser(ctx context.Context, phone, email, username string) (*models.User, error)
}

type ownerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *ownerRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *ownerRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *ownerRepository) GetMerchantByName(ctx context.Context, name string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("business_name = ?", name).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

func (r *ownerRepository) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	if err := r.db.WithContext(ctx).Create(merchant).Error; err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *ownerRepository) UpdateUserBalanceSnapshot(ctx context.Context, userID uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("cached_balance", balance).Error
}

func (r *ownerRepository) UpdateMerchantBalanceSnapshot(ctx context.Context, merchantID uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("id = ?", merchantID).
		Update("cached_balance", balance).Error
}

func (r *ownerRepository) FindUser(ctx context.Context, phone, email, username string) (*models.User, error) {
	q := r.db.WithContext(ctx)
	switch {
	case phone != "":
		q = q.Where("phone = ?", phone)
	case email != "":
		q = q.Where("email = ?", email)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		return nil, ErrOwnerNotFound
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
