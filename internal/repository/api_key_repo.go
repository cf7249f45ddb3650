package repository

import (
	"context"

	"hospital-admission/internal/models"

	"gorm.io/gorm"
)

type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepo(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// CreateAPIKey stores a new API key
func (r *APIKeyRepository) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	return translate(r.db.WithContext(ctx).Create(key).Error)
}

// FindAPIKeyByPrefix finds a key by its public prefix
func (r *APIKeyRepository) FindAPIKeyByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).Where("prefix = ?", prefix).First(&key).Error; err != nil {
		return nil, translate(err)
	}
	return &key, nil
}

// ListAPIKeys returns every key, newest first
func (r *APIKeyRepository) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

// RevokeAPIKey deactivates a key and returns it
func (r *APIKeyRepository) RevokeAPIKey(ctx context.Context, id uint) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).First(&key, id).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.db.WithContext(ctx).Model(&key).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return &key, nil
}
