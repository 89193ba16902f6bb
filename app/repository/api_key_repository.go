package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/models"
)

// apiKeyRepository implements the APIKeyRepository interface
type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new API key repository instance
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

// Create stores a new API key record
func (r *apiKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// GetActiveByHash resolves a key hash to a non-revoked API key.
func (r *apiKeyRepository) GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var key models.APIKey
	err := r.db.WithContext(ctx).
		Where("hash = ? AND revoked_at IS NULL", trimmed).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// TouchLastUsed records when a key was last presented.
func (r *apiKeyRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

// RevokeByPrefix revokes every active key with the given display prefix and
// returns how many were revoked.
func (r *apiKeyRepository) RevokeByPrefix(ctx context.Context, prefix string) (int64, error) {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return 0, fmt.Errorf("prefix is required")
	}
	res := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("prefix = ? AND revoked_at IS NULL", trimmed).
		Update("revoked_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// ListBySubject returns all keys of a subject, newest first
func (r *apiKeyRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", strings.TrimSpace(subjectID)).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}
