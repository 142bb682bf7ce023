package repositories

import (
	"context"
	"errors"
	"fmt"

	"kopa/internal/models"

	"gorm.io/gorm"
)

var ErrProviderNotFound = errors.New("provider not found")

// ProviderRepository reads external payment rail rows. Providers are
// managed by an admin collaborator; the ledger side only ever resolves
// them by stable name.
type ProviderRepository interface {
	GetByName(ctx context.Context, name string) (*models.Provider, error)
	ListEnabled(ctx context.Context) ([]models.Provider, error)
}

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) GetByName(ctx context.Context, name string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

func (r *providerRepository) ListEnabled(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}
