package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
)

// APIKeyRepository defines the interface for API key database operations
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	RevokeByPrefix(ctx context.Context, prefix string) (int64, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.APIKey, error)
}

// Repositories holds all repository instances
type Repositories struct {
	APIKey APIKeyRepository
	Ledger credits.Ledger
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		APIKey: NewAPIKeyRepository(db),
		Ledger: credits.NewRepository(db),
	}
}
